// Package analytics computes dashboard aggregates over a caller-supplied
// record set: top cited domains, the 7-day check/mention trend, competitor
// share-of-voice, and mention position statistics. Every function is a
// pure computation over the input slice; empty inputs yield well-typed
// empty results, never errors.
package analytics

import (
	"strings"

	"github.com/brandlens/brandlens-cli/internal/mention"
	"github.com/brandlens/brandlens-cli/internal/model"
	"github.com/brandlens/brandlens-cli/internal/normalize"
)

// derive normalizes one record and re-runs mention detection against its
// own brand. The stored mentioned flag is trusted only when the record
// carries nothing to re-derive from.
func derive(rec model.SearchRecord) (normalize.Result, model.Detection) {
	norm := normalize.NormalizeRecord(rec)
	det := mention.Detect(norm.AnswerBody, norm.Citations, mention.Target{Name: rec.Brand, Domain: rec.Domain})
	if !det.Mentioned && norm.AnswerBody == "" && len(norm.Citations) == 0 && rec.Mentioned != nil {
		det.Mentioned = *rec.Mentioned
	}
	return norm, det
}

func trimQuery(q string) string {
	return strings.TrimSpace(q)
}
