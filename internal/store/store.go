package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// IsNotFound reports whether err stems from a missing row, regardless of
// which backend produced it.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// RecordFilter specifies criteria for listing search records.
type RecordFilter struct {
	UserID        string     `json:"user_id,omitempty"`
	TeamID        string     `json:"team_id,omitempty"`
	TrackerID     string     `json:"tracker_id,omitempty"`
	Since         *time.Time `json:"since,omitempty"`
	MentionedOnly bool       `json:"mentioned_only,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}

// Store defines the persistence interface for trackers, competitors and
// stored answer-engine responses.
type Store interface {
	// Trackers
	CreateTracker(ctx context.Context, t model.Tracker) (*model.Tracker, error)
	GetTracker(ctx context.Context, id string) (*model.Tracker, error)
	ListTrackers(ctx context.Context, userID string) ([]model.Tracker, error)
	DeleteTracker(ctx context.Context, id string) error

	// Competitors
	CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error)
	ListCompetitors(ctx context.Context, userID string) ([]model.Competitor, error)
	DeleteCompetitor(ctx context.Context, id string) error

	// Search records
	InsertRecord(ctx context.Context, rec model.SearchRecord) (*model.SearchRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.SearchRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
