package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Moirius/La-Station-Prospection/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, extracted so tests can
// substitute a mock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

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

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name              TEXT NOT NULL,
	name_key          TEXT NOT NULL UNIQUE,
	category          TEXT,
	scrape_status     TEXT NOT NULL DEFAULT 'pending',
	ai_status         TEXT NOT NULL DEFAULT 'pending',
	opportunity_score DOUBLE PRECISION,
	lead              JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_name_key ON leads(name_key);
CREATE INDEX IF NOT EXISTS idx_leads_scrape_status ON leads(scrape_status);
CREATE INDEX IF NOT EXISTS idx_leads_category ON leads(category);
CREATE INDEX IF NOT EXISTS idx_leads_opportunity_score ON leads(opportunity_score DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.ScrapeStatus == "" {
		lead.ScrapeStatus = model.StatusPending
	}
	if lead.AIStatus == "" {
		lead.AIStatus = model.StatusPending
	}

	leadJSON, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, name, name_key, category, scrape_status, ai_status, opportunity_score, lead, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		lead.ID, lead.Name, lead.NameKey(), lead.Category,
		string(lead.ScrapeStatus), string(lead.AIStatus),
		lead.OpportunityScore, leadJSON, now, now,
	)
	return eris.Wrapf(err, "postgres: insert lead %s", lead.Name)
}

func (s *PostgresStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	lead.UpdatedAt = time.Now().UTC()

	leadJSON, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal lead")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET name = $1, name_key = $2, category = $3, scrape_status = $4, ai_status = $5,
		        opportunity_score = $6, lead = $7, updated_at = $8
		 WHERE id = $9`,
		lead.Name, lead.NameKey(), lead.Category,
		string(lead.ScrapeStatus), string(lead.AIStatus),
		lead.OpportunityScore, leadJSON, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", lead.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", lead.ID)
	}
	return nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT lead FROM leads WHERE id = $1`, id)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("lead not found: %s", id)
		}
		return nil, eris.Wrap(err, "postgres: get lead")
	}
	return unmarshalLead(blob)
}

func (s *PostgresStore) GetLeadByName(ctx context.Context, name string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT lead FROM leads WHERE name_key = $1`, model.NameKey(name))

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get lead by name")
	}
	return unmarshalLead(blob)
}

func (s *PostgresStore) ExistingNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT name_key FROM leads`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: existing names")
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, eris.Wrap(err, "postgres: scan name key")
		}
		names[key] = struct{}{}
	}
	return names, eris.Wrap(rows.Err(), "postgres: existing names iterate")
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT lead FROM leads WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		query += ` AND scrape_status = ` + arg(string(filter.Status))
	}
	if filter.Category != "" {
		query += ` AND category = ` + arg(filter.Category)
	}
	if filter.MinScore != nil {
		query += ` AND opportunity_score >= ` + arg(*filter.MinScore)
	}
	query += ` ORDER BY opportunity_score DESC NULLS LAST, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)

	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l, err := unmarshalLead(blob)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func unmarshalLead(blob []byte) (*model.Lead, error) {
	var l model.Lead
	if err := json.Unmarshal(blob, &l); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal lead")
	}
	return &l, nil
}
