package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS trackers (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	team_id    TEXT,
	brand      TEXT NOT NULL,
	query      TEXT NOT NULL,
	domain     TEXT,
	engine     TEXT NOT NULL DEFAULT 'openai',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS competitors (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	domain     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS search_records (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	team_id     TEXT,
	tracker_id  TEXT,
	brand       TEXT NOT NULL,
	query       TEXT NOT NULL,
	domain      TEXT,
	engine      TEXT,
	mentioned   BOOLEAN,
	evidence    TEXT,
	raw_output  TEXT,
	source_urls TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_trackers_user_id ON trackers(user_id);
CREATE INDEX IF NOT EXISTS idx_competitors_user_id ON competitors(user_id);
CREATE INDEX IF NOT EXISTS idx_search_records_user_id ON search_records(user_id);
CREATE INDEX IF NOT EXISTS idx_search_records_tracker_id ON search_records(tracker_id);
CREATE INDEX IF NOT EXISTS idx_search_records_created_at ON search_records(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTracker(ctx context.Context, t model.Tracker) (*model.Tracker, error) {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()
	if t.Engine == "" {
		t.Engine = model.EngineOpenAI
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trackers (id, user_id, team_id, brand, query, domain, engine, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TeamID, t.Brand, t.Query, t.Domain, string(t.Engine), t.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert tracker")
	}
	return &t, nil
}

func (s *SQLiteStore) GetTracker(ctx context.Context, id string) (*model.Tracker, error) {
	var t model.Tracker
	var engine string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, team_id, brand, query, domain, engine, created_at FROM trackers WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.UserID, &t.TeamID, &t.Brand, &t.Query, &t.Domain, &engine, &t.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get tracker %s", id)
	}
	t.Engine = model.Engine(engine)
	return &t, nil
}

func (s *SQLiteStore) ListTrackers(ctx context.Context, userID string) ([]model.Tracker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, team_id, brand, query, domain, engine, created_at FROM trackers WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list trackers")
	}
	defer rows.Close()

	var trackers []model.Tracker
	for rows.Next() {
		var t model.Tracker
		var engine string
		if err := rows.Scan(&t.ID, &t.UserID, &t.TeamID, &t.Brand, &t.Query, &t.Domain, &engine, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan tracker")
		}
		t.Engine = model.Engine(engine)
		trackers = append(trackers, t)
	}
	return trackers, eris.Wrap(rows.Err(), "sqlite: list trackers iterate")
}

func (s *SQLiteStore) DeleteTracker(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trackers WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete tracker %s", id)
	}
	return checkRowsAffected(res, "tracker", id)
}

func (s *SQLiteStore) CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO competitors (id, user_id, name, domain, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Domain, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert competitor")
	}
	return &c, nil
}

func (s *SQLiteStore) ListCompetitors(ctx context.Context, userID string) ([]model.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, domain, created_at FROM competitors WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list competitors")
	}
	defer rows.Close()

	var competitors []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Domain, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan competitor")
		}
		competitors = append(competitors, c)
	}
	return competitors, eris.Wrap(rows.Err(), "sqlite: list competitors iterate")
}

func (s *SQLiteStore) DeleteCompetitor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete competitor %s", id)
	}
	return checkRowsAffected(res, "competitor", id)
}

func (s *SQLiteStore) InsertRecord(ctx context.Context, rec model.SearchRecord) (*model.SearchRecord, error) {
	rec.ID = uuid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	urlsJSON, err := json.Marshal(rec.SourceURLs)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal source urls")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO search_records (id, user_id, team_id, tracker_id, brand, query, domain, engine, mentioned, evidence, raw_output, source_urls, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.TeamID, rec.TrackerID, rec.Brand, rec.Query, rec.Domain,
		string(rec.Engine), rec.Mentioned, rec.Evidence, rec.RawOutput, string(urlsJSON), rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert record")
	}
	return &rec, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.SearchRecord, error) {
	query := `SELECT id, user_id, team_id, tracker_id, brand, query, domain, engine, mentioned, evidence, raw_output, source_urls, created_at FROM search_records WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.TeamID != "" {
		query += ` AND team_id = ?`
		args = append(args, filter.TeamID)
	}
	if filter.TrackerID != "" {
		query += ` AND tracker_id = ?`
		args = append(args, filter.TrackerID)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}
	if filter.MentionedOnly {
		query += ` AND mentioned = 1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.SearchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*model.SearchRecord, error) {
	var rec model.SearchRecord
	var engine, evidence, rawOutput, urlsJSON sql.NullString
	var mentioned sql.NullBool

	err := row.Scan(&rec.ID, &rec.UserID, &rec.TeamID, &rec.TrackerID, &rec.Brand, &rec.Query,
		&rec.Domain, &engine, &mentioned, &evidence, &rawOutput, &urlsJSON, &rec.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan record")
	}

	if engine.Valid {
		rec.Engine = model.Engine(engine.String)
	}
	if mentioned.Valid {
		rec.Mentioned = &mentioned.Bool
	}
	rec.Evidence = evidence.String
	rec.RawOutput = rawOutput.String
	if urlsJSON.Valid && urlsJSON.String != "" && urlsJSON.String != "null" {
		if err := json.Unmarshal([]byte(urlsJSON.String), &rec.SourceURLs); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal source urls")
		}
	}
	return &rec, nil
}
