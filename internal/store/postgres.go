package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/brandlens/brandlens-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store relies on, extracted so
// tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_tracker":    `INSERT INTO trackers (id, user_id, team_id, brand, query, domain, engine, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_tracker":       `SELECT id, user_id, team_id, brand, query, domain, engine, created_at FROM trackers WHERE id = $1`,
	"list_trackers":     `SELECT id, user_id, team_id, brand, query, domain, engine, created_at FROM trackers WHERE user_id = $1 ORDER BY created_at DESC`,
	"insert_competitor": `INSERT INTO competitors (id, user_id, name, domain, created_at) VALUES ($1, $2, $3, $4, $5)`,
	"list_competitors":  `SELECT id, user_id, name, domain, created_at FROM competitors WHERE user_id = $1 ORDER BY created_at DESC`,
	"insert_record":     `INSERT INTO search_records (id, user_id, team_id, tracker_id, brand, query, domain, engine, mentioned, evidence, raw_output, source_urls, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS trackers (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT NOT NULL,
	team_id    TEXT,
	brand      TEXT NOT NULL,
	query      TEXT NOT NULL,
	domain     TEXT,
	engine     TEXT NOT NULL DEFAULT 'openai',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS competitors (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	domain     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_records (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
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
	source_urls JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_trackers_user_id ON trackers(user_id);
CREATE INDEX IF NOT EXISTS idx_competitors_user_id ON competitors(user_id);
CREATE INDEX IF NOT EXISTS idx_search_records_user_id ON search_records(user_id);
CREATE INDEX IF NOT EXISTS idx_search_records_tracker_id ON search_records(tracker_id);
CREATE INDEX IF NOT EXISTS idx_search_records_user_created ON search_records(user_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateTracker(ctx context.Context, t model.Tracker) (*model.Tracker, error) {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()
	if t.Engine == "" {
		t.Engine = model.EngineOpenAI
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO trackers (id, user_id, team_id, brand, query, domain, engine, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.TeamID, t.Brand, t.Query, t.Domain, string(t.Engine), t.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert tracker")
	}
	return &t, nil
}

func (s *PostgresStore) GetTracker(ctx context.Context, id string) (*model.Tracker, error) {
	var t model.Tracker
	var engine string
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, team_id, brand, query, domain, engine, created_at FROM trackers WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.UserID, &t.TeamID, &t.Brand, &t.Query, &t.Domain, &engine, &t.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get tracker %s", id)
	}
	t.Engine = model.Engine(engine)
	return &t, nil
}

func (s *PostgresStore) ListTrackers(ctx context.Context, userID string) ([]model.Tracker, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, team_id, brand, query, domain, engine, created_at FROM trackers WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list trackers")
	}
	defer rows.Close()

	var trackers []model.Tracker
	for rows.Next() {
		var t model.Tracker
		var engine string
		if err := rows.Scan(&t.ID, &t.UserID, &t.TeamID, &t.Brand, &t.Query, &t.Domain, &engine, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan tracker")
		}
		t.Engine = model.Engine(engine)
		trackers = append(trackers, t)
	}
	return trackers, eris.Wrap(rows.Err(), "postgres: list trackers iterate")
}

func (s *PostgresStore) DeleteTracker(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trackers WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete tracker %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("tracker not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO competitors (id, user_id, name, domain, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.UserID, c.Name, c.Domain, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert competitor")
	}
	return &c, nil
}

func (s *PostgresStore) ListCompetitors(ctx context.Context, userID string) ([]model.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, domain, created_at FROM competitors WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list competitors")
	}
	defer rows.Close()

	var competitors []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Domain, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan competitor")
		}
		competitors = append(competitors, c)
	}
	return competitors, eris.Wrap(rows.Err(), "postgres: list competitors iterate")
}

func (s *PostgresStore) DeleteCompetitor(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete competitor %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("competitor not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) InsertRecord(ctx context.Context, rec model.SearchRecord) (*model.SearchRecord, error) {
	rec.ID = uuid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	urlsJSON, err := json.Marshal(rec.SourceURLs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal source urls")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO search_records (id, user_id, team_id, tracker_id, brand, query, domain, engine, mentioned, evidence, raw_output, source_urls, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.UserID, rec.TeamID, rec.TrackerID, rec.Brand, rec.Query, rec.Domain,
		string(rec.Engine), rec.Mentioned, rec.Evidence, rec.RawOutput, urlsJSON, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert record")
	}
	return &rec, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.SearchRecord, error) {
	query := `SELECT id, user_id, team_id, tracker_id, brand, query, domain, engine, mentioned, evidence, raw_output, source_urls, created_at FROM search_records WHERE true`
	args := []any{}
	argIdx := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(` AND user_id = $%d`, argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.TeamID != "" {
		query += fmt.Sprintf(` AND team_id = $%d`, argIdx)
		args = append(args, filter.TeamID)
		argIdx++
	}
	if filter.TrackerID != "" {
		query += fmt.Sprintf(` AND tracker_id = $%d`, argIdx)
		args = append(args, filter.TrackerID)
		argIdx++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, argIdx)
		args = append(args, *filter.Since)
		argIdx++
	}
	if filter.MentionedOnly {
		query += ` AND mentioned = true`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.SearchRecord
	for rows.Next() {
		var rec model.SearchRecord
		var engine *string
		var evidence, rawOutput *string
		var urlsJSON []byte

		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TeamID, &rec.TrackerID, &rec.Brand, &rec.Query,
			&rec.Domain, &engine, &rec.Mentioned, &evidence, &rawOutput, &urlsJSON, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		if engine != nil {
			rec.Engine = model.Engine(*engine)
		}
		if evidence != nil {
			rec.Evidence = *evidence
		}
		if rawOutput != nil {
			rec.RawOutput = *rawOutput
		}
		if len(urlsJSON) > 0 {
			if err := json.Unmarshal(urlsJSON, &rec.SourceURLs); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal source urls")
			}
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}
