package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strideiq/policyengine/internal/rules"
)

// PostgresStore is a PostgreSQL implementation of the RuleStore interface.
// Conditions and actions are stored as JSONB documents; rules are returned
// in creation order so conflict-resolution ties stay deterministic.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the rules table when it does not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rules (
			org_id     TEXT        NOT NULL,
			id         TEXT        NOT NULL,
			name       TEXT        NOT NULL,
			conditions JSONB       NOT NULL DEFAULT '[]',
			actions    JSONB       NOT NULL DEFAULT '[]',
			active     BOOLEAN     NOT NULL DEFAULT TRUE,
			priority   INTEGER     NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (org_id, id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure rules schema: %w", err)
	}
	return nil
}

// Seed inserts the default rule set for an org when the org has no rules yet.
func (p *PostgresStore) Seed(ctx context.Context, orgID string, set []rules.Rule) error {
	var count int
	if err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM rules WHERE org_id = $1`, orgID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, rule := range set {
		if err := p.UpsertRule(ctx, orgID, rule); err != nil {
			return err
		}
	}
	return nil
}

// ActiveRules returns the active rules for an org in creation order.
func (p *PostgresStore) ActiveRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	return p.query(ctx,
		`SELECT id, name, conditions, actions, active, priority, created_at
		 FROM rules WHERE org_id = $1 AND active ORDER BY created_at, id`, orgID)
}

// ListRules returns every rule for an org in creation order.
func (p *PostgresStore) ListRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	return p.query(ctx,
		`SELECT id, name, conditions, actions, active, priority, created_at
		 FROM rules WHERE org_id = $1 ORDER BY created_at, id`, orgID)
}

// UpsertRule creates or updates a rule.
func (p *PostgresStore) UpsertRule(ctx context.Context, orgID string, rule rules.Rule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to encode conditions: %w", err)
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("failed to encode actions: %w", err)
	}

	createdAt := time.Now().UTC()
	if rule.CreatedAt != nil {
		createdAt = *rule.CreatedAt
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO rules (org_id, id, name, conditions, actions, active, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (org_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			conditions = EXCLUDED.conditions,
			actions = EXCLUDED.actions,
			active = EXCLUDED.active,
			priority = EXCLUDED.priority`,
		orgID, rule.ID, rule.Name, conditions, actions, rule.Active, rule.Priority, createdAt)
	if err != nil {
		return fmt.Errorf("failed to upsert rule %q: %w", rule.ID, err)
	}
	return nil
}

// DeleteRule removes a rule by id. Idempotent.
func (p *PostgresStore) DeleteRule(ctx context.Context, orgID, id string) error {
	if _, err := p.pool.Exec(ctx,
		`DELETE FROM rules WHERE org_id = $1 AND id = $2`, orgID, id); err != nil {
		return fmt.Errorf("failed to delete rule %q: %w", id, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]rules.Rule, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	result := make([]rules.Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return result, nil
}

func scanRule(row pgx.Row) (rules.Rule, error) {
	var (
		rule       rules.Rule
		conditions []byte
		actions    []byte
		createdAt  time.Time
	)
	if err := row.Scan(&rule.ID, &rule.Name, &conditions, &actions,
		&rule.Active, &rule.Priority, &createdAt); err != nil {
		return rules.Rule{}, fmt.Errorf("failed to scan rule: %w", err)
	}
	if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
		return rules.Rule{}, fmt.Errorf("failed to decode conditions for rule %q: %w", rule.ID, err)
	}
	if err := json.Unmarshal(actions, &rule.Actions); err != nil {
		return rules.Rule{}, fmt.Errorf("failed to decode actions for rule %q: %w", rule.ID, err)
	}
	rule.CreatedAt = &createdAt
	return rule, nil
}
