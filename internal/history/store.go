package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nileshgupta/stocklens/internal/model"
)

// Caps for Recent queries.
const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// Store persists insights in PostgreSQL.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// New creates a store on an existing pool.
func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Init creates the insights table and its index when missing.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS insights (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create insights table: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS insights_kind_created_at_idx
		ON insights (kind, created_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("create insights index: %w", err)
	}

	return nil
}

// Save inserts one insight with ON CONFLICT DO NOTHING on the ID.
func (s *Store) Save(ctx context.Context, ins model.Insight) error {
	ct, err := s.db.Exec(ctx, `
		INSERT INTO insights (id, kind, subject, model, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, ins.ID, ins.Kind, ins.Subject, ins.Model, ins.Payload, ins.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}

	if ct.RowsAffected() == 0 {
		s.logger.Debug("insight already stored", "id", ins.ID)
	}
	return nil
}

// Recent returns the newest insights, optionally filtered by kind.
// Limit is clamped to a sane range; zero means the default page size.
func (s *Store) Recent(ctx context.Context, kind string, limit int) ([]model.Insight, error) {
	query, args := buildRecentQuery(kind, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	var out []model.Insight
	for rows.Next() {
		var ins model.Insight
		if err := rows.Scan(&ins.ID, &ins.Kind, &ins.Subject, &ins.Model, &ins.Payload, &ins.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		out = append(out, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read insights: %w", err)
	}

	return out, nil
}

func buildRecentQuery(kind string, limit int) (string, []any) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	const cols = `SELECT id, kind, subject, model, payload, created_at FROM insights`

	if kind != "" {
		return cols + ` WHERE kind = $1 ORDER BY created_at DESC LIMIT $2`, []any{kind, limit}
	}
	return cols + ` ORDER BY created_at DESC LIMIT $1`, []any{limit}
}
