// Package normalize turns raw answer-engine payloads into a uniform
// {answer body, citations} shape. Payloads arrive in one of three forms:
// a structured response object, a JSON-encoded string wrapping one, or
// freeform text. Parse failures never propagate; they degrade to the
// plain-text reading of the input.
package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// Result is the normalized view of one raw payload.
type Result struct {
	AnswerBody string
	Citations  []model.Citation
}

// responsePayload mirrors the subset of the answers API response the
// normalizer reads: an output array mixing message items and
// web_search_call items.
type responsePayload struct {
	Output []outputItem `json:"output"`
}

type outputItem struct {
	Type    string         `json:"type"`
	Content []contentBlock `json:"content"`
	Action  *searchAction  `json:"action"`
}

type contentBlock struct {
	Text        string       `json:"text"`
	Annotations []annotation `json:"annotations"`
}

type annotation struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type searchAction struct {
	Sources []actionSource `json:"sources"`
}

type actionSource struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Name  string `json:"name"`
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>\[\]()]+`)

// Normalize extracts the answer body and citation list from a raw payload.
// It never fails: unparseable input is treated as plain text with no
// citations.
func Normalize(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}
	}

	doc := raw
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		// Not JSON at all: the payload is the answer.
		return Result{AnswerBody: raw}
	}

	// A JSON-encoded string wraps the real payload one level down.
	if inner, ok := probe.(string); ok {
		doc = inner
		if err := json.Unmarshal([]byte(inner), &probe); err != nil {
			return Result{AnswerBody: strings.TrimSpace(inner)}
		}
	}

	obj, ok := probe.(map[string]any)
	if !ok {
		// Valid JSON but not an object (a bare number, array, bool):
		// fall back to the text reading.
		return Result{AnswerBody: strings.TrimSpace(doc)}
	}
	if _, hasOutput := obj["output"]; !hasOutput {
		return Result{AnswerBody: strings.TrimSpace(doc)}
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return Result{AnswerBody: strings.TrimSpace(doc)}
	}

	// Annotation citations are merged ahead of search-call sources no
	// matter where the items sit in the output array, so on a shared URL
	// the annotation's title survives dedup.
	var body string
	var annCites, srcCites []model.Citation

	for _, item := range payload.Output {
		switch item.Type {
		case "message":
			if body == "" && len(item.Content) > 0 {
				block := item.Content[0]
				body = strings.TrimSpace(block.Text)
				for _, ann := range block.Annotations {
					if ann.Type == "url_citation" && ann.URL != "" {
						annCites = append(annCites, model.Citation{URL: ann.URL, Title: ann.Title})
					}
				}
			}
		case "web_search_call":
			if item.Action == nil {
				continue
			}
			for _, src := range item.Action.Sources {
				if src.URL == "" {
					continue
				}
				title := src.Title
				if title == "" {
					title = src.Name
				}
				srcCites = append(srcCites, model.Citation{URL: src.URL, Title: title})
			}
		}
	}

	citations := append(annCites, srcCites...)
	if len(citations) == 0 && body != "" {
		citations = ScanURLs(body)
	}

	return Result{AnswerBody: body, Citations: DedupeCitations(citations)}
}

// NormalizeRecord normalizes a stored record, applying the caller-side
// fallbacks: stored source URLs stand in when the payload yields no
// citations, and the stored evidence string stands in when it yields no
// answer body.
func NormalizeRecord(rec model.SearchRecord) Result {
	res := Normalize(rec.RawOutput)
	if res.AnswerBody == "" && rec.Evidence != "" {
		res.AnswerBody = rec.Evidence
	}
	if len(res.Citations) == 0 && len(rec.SourceURLs) > 0 {
		cites := make([]model.Citation, 0, len(rec.SourceURLs))
		for _, u := range rec.SourceURLs {
			if u != "" {
				cites = append(cites, model.Citation{URL: u})
			}
		}
		res.Citations = DedupeCitations(cites)
	}
	return res
}

// ScanURLs extracts URL-shaped substrings from text as untitled citations.
func ScanURLs(text string) []model.Citation {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	cites := make([]model.Citation, 0, len(matches))
	for _, m := range matches {
		cites = append(cites, model.Citation{URL: strings.TrimRight(m, `.,;:!?"'`)})
	}
	return cites
}

// DedupeCitations removes duplicate URLs, keeping first-seen order. When
// duplicates disagree on title, the titled entry wins; among titled
// duplicates the first seen wins.
func DedupeCitations(cites []model.Citation) []model.Citation {
	if len(cites) == 0 {
		return cites
	}
	index := make(map[string]int, len(cites))
	out := make([]model.Citation, 0, len(cites))
	for _, c := range cites {
		i, seen := index[c.URL]
		if !seen {
			index[c.URL] = len(out)
			out = append(out, c)
			continue
		}
		if out[i].Title == "" && c.Title != "" {
			out[i].Title = c.Title
		}
	}
	return out
}
