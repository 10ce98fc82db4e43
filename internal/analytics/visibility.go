package analytics

import (
	"math"
	"sort"

	"github.com/brandlens/brandlens-cli/internal/mention"
	"github.com/brandlens/brandlens-cli/internal/model"
)

// CompetitorVisibility computes each competitor's share of voice across the
// record set. A competitor's applicable universe is every record whose
// query string matched them at least once: the first match against a given
// query adds that query's full record count to the denominator, and later
// matches against the same query only add to the mention count. This reads
// as "of all searches run for queries where this competitor ever showed
// up, what fraction mentioned them". Competitors have no query set of
// their own, so their universe is inferred from the user's queries.
func CompetitorVisibility(records []model.SearchRecord, competitors []model.Competitor) []model.CompetitorMetric {
	// Denominator groups: records sharing the exact trimmed query string,
	// regardless of mention outcome.
	queryTotals := make(map[string]int, len(records))
	for _, rec := range records {
		queryTotals[trimQuery(rec.Query)]++
	}

	metrics := make([]model.CompetitorMetric, 0, len(competitors))
	for _, comp := range competitors {
		metric := model.CompetitorMetric{Name: comp.Name, Domain: comp.Domain}
		target := mention.Target{Name: comp.Name, Domain: comp.Domain}
		counted := make(map[string]bool)

		for _, rec := range records {
			norm, _ := derive(rec)
			det := mention.Detect(norm.AnswerBody, norm.Citations, target)
			if !det.Mentioned {
				continue
			}

			metric.MentionCount++
			query := trimQuery(rec.Query)
			if !counted[query] {
				counted[query] = true
				metric.ApplicableSearches += queryTotals[query]
			}
			if metric.LastSeenAt == nil || rec.CreatedAt.After(*metric.LastSeenAt) {
				seen := rec.CreatedAt
				metric.LastSeenAt = &seen
			}
		}

		if metric.ApplicableSearches > 0 {
			pct := 100 * float64(metric.MentionCount) / float64(metric.ApplicableSearches)
			metric.VisibilityPercent = math.Round(pct*100) / 100
		}
		metrics = append(metrics, metric)
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].VisibilityPercent > metrics[j].VisibilityPercent
	})
	return metrics
}
