package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens-cli/internal/model"
)

const structuredPayload = `{
	"output": [
		{
			"type": "web_search_call",
			"action": {
				"sources": [
					{"url": "https://example.com/a", "name": "Example A"},
					{"url": "https://example.com/b", "title": "Example B"}
				]
			}
		},
		{
			"type": "message",
			"content": [
				{
					"text": "Acme leads the market.",
					"annotations": [
						{"type": "url_citation", "url": "https://example.com/a", "title": "Example A titled"},
						{"type": "file_citation", "url": "https://ignored.example.com"}
					]
				}
			]
		}
	]
}`

func TestNormalize_StructuredObject(t *testing.T) {
	res := Normalize(structuredPayload)

	assert.Equal(t, "Acme leads the market.", res.AnswerBody)
	require.Len(t, res.Citations, 2)
	assert.Equal(t, "https://example.com/a", res.Citations[0].URL)
	assert.Equal(t, "Example A titled", res.Citations[0].Title)
	assert.Equal(t, "https://example.com/b", res.Citations[1].URL)
	assert.Equal(t, "Example B", res.Citations[1].Title)
}

func TestNormalize_AnnotationTitleBeatsSearchSource(t *testing.T) {
	// The search call precedes the message in the output array, yet the
	// annotation's citation is merged first and its title wins the dedup.
	raw := `{
		"output": [
			{"type": "web_search_call", "action": {"sources": [{"url": "https://example.com/a", "name": "Example A"}]}},
			{"type": "message", "content": [{"text": "Acme wins.", "annotations": [{"type": "url_citation", "url": "https://example.com/a", "title": "Example A titled"}]}]}
		]
	}`

	res := Normalize(raw)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "Example A titled", res.Citations[0].Title)
}

func TestNormalize_JSONEncodedString(t *testing.T) {
	wrapped := `"{\"output\":[{\"type\":\"message\",\"content\":[{\"text\":\"Wrapped answer.\",\"annotations\":[]}]}]}"`

	res := Normalize(wrapped)
	assert.Equal(t, "Wrapped answer.", res.AnswerBody)
}

func TestNormalize_JSONEncodedPlainString(t *testing.T) {
	res := Normalize(`"Just an answer, not a payload."`)
	assert.Equal(t, "Just an answer, not a payload.", res.AnswerBody)
	assert.Empty(t, res.Citations)
}

func TestNormalize_PlainText(t *testing.T) {
	res := Normalize("Acme is a popular choice. Not JSON at all {")
	assert.Equal(t, "Acme is a popular choice. Not JSON at all {", res.AnswerBody)
	assert.Empty(t, res.Citations)
}

func TestNormalize_URLFallbackFromBody(t *testing.T) {
	// No annotations and no search sources, so the URL in the answer text
	// becomes the citation.
	raw := `{"output":[{"type":"message","content":[{"text":"Acme is great. See https://techcrunch.com/acme for details.","annotations":[]}]}]}`

	res := Normalize(raw)
	assert.Equal(t, "Acme is great. See https://techcrunch.com/acme for details.", res.AnswerBody)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "https://techcrunch.com/acme", res.Citations[0].URL)
	assert.Empty(t, res.Citations[0].Title)
}

func TestNormalize_EmptyAndDegenerate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"bare_number", "42"},
		{"bare_array", `[1,2,3]`},
		{"object_without_output", `{"foo":"bar"}`},
		{"empty_output", `{"output":[]}`},
		{"output_wrong_type", `{"output":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { Normalize(tt.raw) })
		})
	}
}

func TestNormalize_EmptyOutputYieldsEmptyBody(t *testing.T) {
	res := Normalize(`{"output":[]}`)
	assert.Empty(t, res.AnswerBody)
	assert.Empty(t, res.Citations)
}

func TestNormalizeRecord_Fallbacks(t *testing.T) {
	rec := model.SearchRecord{
		RawOutput:  `{"output":[]}`,
		Evidence:   "Stored evidence line.",
		SourceURLs: []string{"https://example.com/x", "https://example.com/x", ""},
	}

	res := NormalizeRecord(rec)
	assert.Equal(t, "Stored evidence line.", res.AnswerBody)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "https://example.com/x", res.Citations[0].URL)
}

func TestNormalizeRecord_PayloadWins(t *testing.T) {
	rec := model.SearchRecord{
		RawOutput:  structuredPayload,
		Evidence:   "stale stored evidence",
		SourceURLs: []string{"https://stale.example.com"},
	}

	res := NormalizeRecord(rec)
	assert.Equal(t, "Acme leads the market.", res.AnswerBody)
	assert.Len(t, res.Citations, 2)
}

func TestDedupeCitations_PrefersTitled(t *testing.T) {
	in := []model.Citation{
		{URL: "https://a.example.com"},
		{URL: "https://b.example.com", Title: "B"},
		{URL: "https://a.example.com", Title: "A"},
		{URL: "https://b.example.com", Title: "B later"},
	}

	out := DedupeCitations(in)
	require.Len(t, out, 2)
	assert.Equal(t, "https://a.example.com", out[0].URL)
	assert.Equal(t, "A", out[0].Title, "untitled first entry adopts the later title")
	assert.Equal(t, "B", out[1].Title, "first titled entry wins ties")
}

func TestDedupeCitations_Idempotent(t *testing.T) {
	// Deduping an already-deduped list changes nothing.
	in := []model.Citation{
		{URL: "https://a.example.com", Title: "A"},
		{URL: "https://b.example.com"},
	}

	once := DedupeCitations(in)
	twice := DedupeCitations(once)
	assert.Equal(t, once, twice)
}

func TestScanURLs(t *testing.T) {
	cites := ScanURLs("see https://example.com/page, and (http://other.test/x) plus text")
	require.Len(t, cites, 2)
	assert.Equal(t, "https://example.com/page", cites[0].URL)
	assert.Equal(t, "http://other.test/x", cites[1].URL)

	assert.Nil(t, ScanURLs("no links here"))
}
