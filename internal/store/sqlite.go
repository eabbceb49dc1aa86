package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Moirius/La-Station-Prospection/internal/model"
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
CREATE TABLE IF NOT EXISTS leads (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	name_key          TEXT NOT NULL UNIQUE,
	category          TEXT,
	scrape_status     TEXT NOT NULL DEFAULT 'pending',
	ai_status         TEXT NOT NULL DEFAULT 'pending',
	opportunity_score REAL,
	lead              TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_name_key ON leads(name_key);
CREATE INDEX IF NOT EXISTS idx_leads_scrape_status ON leads(scrape_status);
CREATE INDEX IF NOT EXISTS idx_leads_category ON leads(category);
CREATE INDEX IF NOT EXISTS idx_leads_opportunity_score ON leads(opportunity_score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.Lead) error {
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
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, name_key, category, scrape_status, ai_status, opportunity_score, lead, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, lead.NameKey(), lead.Category,
		string(lead.ScrapeStatus), string(lead.AIStatus),
		lead.OpportunityScore, string(leadJSON), now, now,
	)
	return eris.Wrapf(err, "sqlite: insert lead %s", lead.Name)
}

func (s *SQLiteStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	lead.UpdatedAt = time.Now().UTC()

	leadJSON, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal lead")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET name = ?, name_key = ?, category = ?, scrape_status = ?, ai_status = ?,
		        opportunity_score = ?, lead = ?, updated_at = ?
		 WHERE id = ?`,
		lead.Name, lead.NameKey(), lead.Category,
		string(lead.ScrapeStatus), string(lead.AIStatus),
		lead.OpportunityScore, string(leadJSON), lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", lead.ID)
	}
	return checkRowsAffected(res, "lead", lead.ID)
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT lead FROM leads WHERE id = ?`, id)
	return scanLead(row, false)
}

func (s *SQLiteStore) GetLeadByName(ctx context.Context, name string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT lead FROM leads WHERE name_key = ?`, model.NameKey(name))
	return scanLead(row, true)
}

func (s *SQLiteStore) ExistingNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name_key FROM leads`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: existing names")
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan name key")
		}
		names[key] = struct{}{}
	}
	return names, eris.Wrap(rows.Err(), "sqlite: existing names iterate")
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT lead FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND scrape_status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.MinScore != nil {
		query += ` AND opportunity_score >= ?`
		args = append(args, *filter.MinScore)
	}
	query += ` ORDER BY opportunity_score DESC, created_at DESC`

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
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var l model.Lead
		if err := json.Unmarshal([]byte(blob), &l); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
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

// scanLead decodes a lead JSON blob. When nilOnMissing is set, an absent row
// yields (nil, nil) instead of an error.
func scanLead(row scannable, nilOnMissing bool) (*model.Lead, error) {
	var blob string
	err := row.Scan(&blob)
	if err == sql.ErrNoRows {
		if nilOnMissing {
			return nil, nil
		}
		return nil, eris.New("lead not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}

	var l model.Lead
	if err := json.Unmarshal([]byte(blob), &l); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal lead")
	}
	return &l, nil
}
