package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink is the durable Sink implementation backed by PostgreSQL.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink creates a new PostgreSQL audit sink.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// EnsureSchema creates the audits table when it does not exist yet.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audits (
			id         TEXT        PRIMARY KEY,
			org_id     TEXT        NOT NULL,
			expense    JSONB       NOT NULL,
			result     JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure audits schema: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS audits_org_created_idx ON audits (org_id, created_at DESC)`)
	if err != nil {
		return fmt.Errorf("failed to ensure audits index: %w", err)
	}
	return nil
}

// Record persists one audit entry.
func (s *PostgresSink) Record(ctx context.Context, entry Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audits (id, org_id, expense, result, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.OrgID, []byte(entry.Expense), []byte(entry.Result), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for an org, newest first.
func (s *PostgresSink) Recent(ctx context.Context, orgID string, limit int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, expense, result, created_at
		FROM audits WHERE org_id = $1
		ORDER BY created_at DESC LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	result := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var expense, res []byte
		if err := rows.Scan(&entry.ID, &entry.OrgID, &expense, &res, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Expense = expense
		entry.Result = res
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	return result, nil
}
