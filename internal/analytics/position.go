package analytics

import (
	"math"
	"sort"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// MentionPositions summarizes how far into the answer text the brand name
// first appears, as a percentage of the response length. Only name matches
// carry a position; domain-only mentions are excluded.
func MentionPositions(records []model.SearchRecord) model.PositionStats {
	var pcts []float64
	for _, rec := range records {
		_, det := derive(rec)
		if det.CharPosition == nil || det.TotalLength == 0 {
			continue
		}
		pcts = append(pcts, 100*float64(*det.CharPosition)/float64(det.TotalLength))
	}

	stats := model.PositionStats{Samples: len(pcts)}
	if len(pcts) == 0 {
		return stats
	}

	var sum float64
	for _, p := range pcts {
		sum += p
	}
	stats.AveragePct = round2(sum / float64(len(pcts)))

	sort.Float64s(pcts)
	mid := len(pcts) / 2
	if len(pcts)%2 == 1 {
		stats.MedianPct = round2(pcts[mid])
	} else {
		stats.MedianPct = round2((pcts[mid-1] + pcts[mid]) / 2)
	}
	return stats
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
