package analytics

import (
	"time"

	"github.com/brandlens/brandlens-cli/internal/model"
)

const dayKeyFormat = "2006-01-02"

// WeeklyTrend buckets records into the 7 calendar days ending at
// referenceDate inclusive, using that date's location for day boundaries.
// The result always has exactly 7 entries, oldest first; days with no
// records stay at zero.
func WeeklyTrend(records []model.SearchRecord, referenceDate time.Time) []model.TrendPoint {
	loc := referenceDate.Location()

	points := make([]model.TrendPoint, 7)
	index := make(map[string]int, 7)
	for i := range points {
		day := referenceDate.AddDate(0, 0, i-6)
		key := day.Format(dayKeyFormat)
		points[i] = model.TrendPoint{Day: day.Format("Mon"), Date: key}
		index[key] = i
	}

	for _, rec := range records {
		key := rec.CreatedAt.In(loc).Format(dayKeyFormat)
		i, ok := index[key]
		if !ok {
			continue
		}
		points[i].Checks++
		if _, det := derive(rec); det.Mentioned {
			points[i].Mentions++
		}
	}

	return points
}
