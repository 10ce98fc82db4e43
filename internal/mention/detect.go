// Package mention decides whether a brand shows up in an answer-engine
// response, either by name in the answer text or by domain among the
// citations.
package mention

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// Target is the brand being looked for. Domain is optional; when set,
// citation hostnames count as mentions too.
type Target struct {
	Name   string
	Domain string
}

// Detect reports whether the target is mentioned. Name matching is
// case-insensitive and word-boundary delimited, so a brand called "Go"
// does not match inside "Google". CharPosition is the zero-based index of
// the first name match; it stays nil for domain-only matches.
func Detect(answerBody string, citations []model.Citation, target Target) model.Detection {
	det := model.Detection{TotalLength: len(answerBody)}

	if pos, ok := findName(answerBody, target.Name); ok {
		det.Mentioned = true
		det.CharPosition = &pos
		return det
	}

	if domainMatches(citations, target.Domain) {
		det.Mentioned = true
	}
	return det
}

// findName locates name as a whole word in body, case-insensitively.
// QuoteMeta guarantees the pattern compiles for any name.
func findName(body, name string) (int, bool) {
	name = strings.TrimSpace(name)
	if name == "" || body == "" {
		return 0, false
	}

	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	loc := re.FindStringIndex(body)
	if loc == nil {
		return 0, false
	}
	return loc[0], true
}

func domainMatches(citations []model.Citation, domain string) bool {
	want := NormalizeDomain(domain)
	if want == "" {
		return false
	}
	for _, c := range citations {
		host, ok := Hostname(c.URL)
		if ok && host == want {
			return true
		}
	}
	return false
}

// NormalizeDomain lower-cases a domain and strips a leading "www.".
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimPrefix(d, "www.")
}

// Hostname extracts the normalized hostname from an absolute URL. Returns
// false for anything that does not parse as an absolute URL with a host;
// such citations simply never participate in domain matching.
func Hostname(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return "", false
	}
	return NormalizeDomain(u.Hostname()), true
}
