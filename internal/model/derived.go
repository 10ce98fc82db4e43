package model

import "time"

// Citation is a source URL the answer engine attributed for its response.
// Title is empty when the engine gave none.
type Citation struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Detection is the mention detector's verdict for one answer body.
// CharPosition is set only when the brand name itself matched in the text;
// a citation-domain match leaves it nil.
type Detection struct {
	Mentioned    bool `json:"mentioned"`
	CharPosition *int `json:"char_position,omitempty"`
	TotalLength  int  `json:"total_length"`
}

// DomainStat aggregates citations for a single cited domain.
type DomainStat struct {
	Domain            string   `json:"domain"`
	RepresentativeURL string   `json:"representative_url"`
	MentionCount      int      `json:"mention_count"`
	Queries           []string `json:"queries"`
}

// CompetitorMetric is a competitor's share-of-voice across a record set.
// ApplicableSearches counts every record whose query string matched the
// competitor at least once, not just the records that mentioned them.
type CompetitorMetric struct {
	Name               string     `json:"name"`
	Domain             string     `json:"domain"`
	MentionCount       int        `json:"mention_count"`
	ApplicableSearches int        `json:"applicable_searches"`
	VisibilityPercent  float64    `json:"visibility_percent"`
	LastSeenAt         *time.Time `json:"last_seen_at,omitempty"`
}

// TrendPoint is one calendar-day bucket in the weekly trend.
type TrendPoint struct {
	Day      string `json:"day"`
	Date     string `json:"date"`
	Checks   int    `json:"checks"`
	Mentions int    `json:"mentions"`
}

// PositionStats summarizes how early in responses a brand tends to appear,
// as a percentage of the way through the answer text.
type PositionStats struct {
	Samples    int     `json:"samples"`
	AveragePct float64 `json:"average_pct"`
	MedianPct  float64 `json:"median_pct"`
}
