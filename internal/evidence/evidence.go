// Package evidence produces the displayable proof-of-mention excerpt from a
// normalized answer body: disclaimer boilerplate removed, link artifacts
// cleaned, whitespace settled. Summarization is total: any string in, some
// string out, never an error.
package evidence

import (
	"regexp"
	"strings"
)

// PlaceholderNoData is the last-resort display string when neither the
// payload nor the stored record carries usable text.
const PlaceholderNoData = "No response data available"

// Summarizer applies an ordered disclaimer rule set plus artifact cleanup.
// The zero value is not usable; use Default or LoadRules.
type Summarizer struct {
	rules []rule
}

// Default returns a Summarizer with the built-in rule set.
func Default() *Summarizer {
	return &Summarizer{rules: disclaimerRules}
}

var (
	markdownLink   = regexp.MustCompile(`\[([^\]\[]*)\]\((https?://[^)\s]*)\)`)
	utmParam       = regexp.MustCompile(`[?&]utm_[a-z]+=[^\s)\]"']*`)
	emptyParens    = regexp.MustCompile(`\(\s*\)`)
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	multiSpace     = regexp.MustCompile(`[ \t]{2,}`)
)

// Summarize cleans an answer body for display. Empty in, empty out; a
// result that is whitespace-only after cleanup collapses to the empty
// string so callers can fall through to their next candidate.
func (s *Summarizer) Summarize(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	out := body
	for _, r := range s.rules {
		out = r.pattern.ReplaceAllString(out, "")
	}

	// Markdown links keep their anchor text; tracking parameters and the
	// leftovers of stripped links go entirely.
	out = utmParam.ReplaceAllString(out, "")
	out = markdownLink.ReplaceAllString(out, "$1")
	out = emptyParens.ReplaceAllString(out, "")
	out = dropUnbalancedParens(out)

	out = excessNewlines.ReplaceAllString(out, "\n\n")
	out = multiSpace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// Resolve implements the three-tier evidence chain: cleaned answer body,
// then the stored evidence string, then the placeholder literal.
func (s *Summarizer) Resolve(answerBody, stored string) string {
	return FirstNonEmpty(
		func() string { return s.Summarize(answerBody) },
		func() string { return strings.TrimSpace(stored) },
		func() string { return PlaceholderNoData },
	)
}

// FirstNonEmpty evaluates candidates in order and returns the first
// non-empty result, or the empty string if every candidate is empty.
func FirstNonEmpty(candidates ...func() string) string {
	for _, c := range candidates {
		if v := c(); v != "" {
			return v
		}
	}
	return ""
}

// dropUnbalancedParens removes closing parens with no opener and opening
// parens with no closer, keeping balanced pairs intact. Link stripping
// routinely leaves these behind.
func dropUnbalancedParens(s string) string {
	drop := make(map[int]bool)
	var stack []int
	for i, r := range s {
		switch r {
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) == 0 {
				drop[i] = true
			} else {
				stack = stack[:len(stack)-1]
			}
		}
	}
	for _, i := range stack {
		drop[i] = true
	}
	if len(drop) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if !drop[i] {
			b.WriteRune(r)
		}
	}
	return b.String()
}
