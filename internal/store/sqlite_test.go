package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Trackers ---

func TestSQLite_Tracker_CreateAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateTracker(ctx, model.Tracker{
		UserID: "user-1",
		Brand:  "Acme",
		Query:  "best crm software",
		Domain: "acme.example",
		Engine: model.EngineClaude,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := st.GetTracker(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Brand)
	assert.Equal(t, "best crm software", got.Query)
	assert.Equal(t, "acme.example", got.Domain)
	assert.Equal(t, model.EngineClaude, got.Engine)
}

func TestSQLite_Tracker_DefaultEngine(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateTracker(ctx, model.Tracker{UserID: "user-1", Brand: "Acme", Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, model.EngineOpenAI, created.Engine)

	got, err := st.GetTracker(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EngineOpenAI, got.Engine)
}

func TestSQLite_Tracker_ListScopedToUser(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateTracker(ctx, model.Tracker{UserID: "user-1", Brand: "Acme", Query: "q1"})
	require.NoError(t, err)
	_, err = st.CreateTracker(ctx, model.Tracker{UserID: "user-2", Brand: "Other", Query: "q2"})
	require.NoError(t, err)

	trackers, err := st.ListTrackers(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, trackers, 1)
	assert.Equal(t, "Acme", trackers[0].Brand)
}

func TestSQLite_Tracker_Delete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateTracker(ctx, model.Tracker{UserID: "user-1", Brand: "Acme", Query: "q"})
	require.NoError(t, err)

	require.NoError(t, st.DeleteTracker(ctx, created.ID))

	err = st.DeleteTracker(ctx, created.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracker not found")
}

func TestSQLite_Tracker_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetTracker(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

// --- Competitors ---

func TestSQLite_Competitor_CreateListDelete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateCompetitor(ctx, model.Competitor{
		UserID: "user-1",
		Name:   "Salesforce",
		Domain: "salesforce.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	competitors, err := st.ListCompetitors(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, competitors, 1)
	assert.Equal(t, "Salesforce", competitors[0].Name)
	assert.Equal(t, "salesforce.com", competitors[0].Domain)

	require.NoError(t, st.DeleteCompetitor(ctx, created.ID))

	competitors, err = st.ListCompetitors(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, competitors)
}

// --- Search records ---

func TestSQLite_Record_InsertAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	mentioned := true
	inserted, err := st.InsertRecord(ctx, model.SearchRecord{
		UserID:     "user-1",
		TrackerID:  "tr-1",
		Brand:      "Acme",
		Query:      "best crm",
		Engine:     model.EngineOpenAI,
		Mentioned:  &mentioned,
		Evidence:   "Acme is a popular choice.",
		RawOutput:  `{"output":[]}`,
		SourceURLs: []string{"https://example.com/a", "https://example.com/b"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inserted.ID)

	records, err := st.ListRecords(ctx, RecordFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "tr-1", rec.TrackerID)
	assert.Equal(t, model.EngineOpenAI, rec.Engine)
	require.NotNil(t, rec.Mentioned)
	assert.True(t, *rec.Mentioned)
	assert.Equal(t, "Acme is a popular choice.", rec.Evidence)
	assert.Equal(t, `{"output":[]}`, rec.RawOutput)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, rec.SourceURLs)
}

func TestSQLite_Record_NullableFields(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.InsertRecord(ctx, model.SearchRecord{UserID: "user-1", Brand: "Acme", Query: "q"})
	require.NoError(t, err)

	records, err := st.ListRecords(ctx, RecordFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Mentioned)
	assert.Empty(t, records[0].Evidence)
	assert.Empty(t, records[0].SourceURLs)
}

func TestSQLite_Record_FilterMentionedOnly(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	yes, no := true, false
	_, err := st.InsertRecord(ctx, model.SearchRecord{UserID: "user-1", Brand: "Acme", Query: "q1", Mentioned: &yes})
	require.NoError(t, err)
	_, err = st.InsertRecord(ctx, model.SearchRecord{UserID: "user-1", Brand: "Acme", Query: "q2", Mentioned: &no})
	require.NoError(t, err)

	records, err := st.ListRecords(ctx, RecordFilter{UserID: "user-1", MentionedOnly: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "q1", records[0].Query)
}

func TestSQLite_Record_FilterSinceAndLimit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	_, err := st.InsertRecord(ctx, model.SearchRecord{UserID: "user-1", Brand: "Acme", Query: "old", CreatedAt: old})
	require.NoError(t, err)
	_, err = st.InsertRecord(ctx, model.SearchRecord{UserID: "user-1", Brand: "Acme", Query: "recent", CreatedAt: recent})
	require.NoError(t, err)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records, err := st.ListRecords(ctx, RecordFilter{UserID: "user-1", Since: &since})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recent", records[0].Query)

	records, err = st.ListRecords(ctx, RecordFilter{UserID: "user-1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSQLite_Record_OrderNewestFirst(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i, day := range []int{10, 20, 15} {
		_, err := st.InsertRecord(ctx, model.SearchRecord{
			UserID:    "user-1",
			Brand:     "Acme",
			Query:     []string{"a", "b", "c"}[i],
			CreatedAt: time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	records, err := st.ListRecords(ctx, RecordFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "b", records[0].Query)
	assert.Equal(t, "c", records[1].Query)
	assert.Equal(t, "a", records[2].Query)
}
