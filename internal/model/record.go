package model

import (
	"time"
)

// Engine identifies which answer engine produced a search record.
type Engine string

const (
	EngineOpenAI Engine = "openai"
	EngineClaude Engine = "claude"
)

// Tracker is a registered brand + query pair that gets checked against an
// answer engine.
type Tracker struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TeamID    string    `json:"team_id,omitempty"`
	Brand     string    `json:"brand"`
	Query     string    `json:"query"`
	Domain    string    `json:"domain,omitempty"`
	Engine    Engine    `json:"engine"`
	CreatedAt time.Time `json:"created_at"`
}

// Competitor is a rival brand tracked for share-of-voice comparison.
type Competitor struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchRecord is one stored answer-engine response for a tracker check.
// RawOutput is untyped on purpose: depending on the engine it may be a
// structured response object, a JSON-encoded string, or freeform text.
// Mentioned and Evidence are the detector's outputs at check time; readers
// re-derive them from RawOutput rather than trusting the stored values.
type SearchRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TeamID     string    `json:"team_id,omitempty"`
	TrackerID  string    `json:"tracker_id,omitempty"`
	Brand      string    `json:"brand"`
	Query      string    `json:"query"`
	Domain     string    `json:"domain,omitempty"`
	Engine     Engine    `json:"engine,omitempty"`
	Mentioned  *bool     `json:"mentioned,omitempty"`
	Evidence   string    `json:"evidence,omitempty"`
	RawOutput  string    `json:"raw_output,omitempty"`
	SourceURLs []string  `json:"source_urls,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
