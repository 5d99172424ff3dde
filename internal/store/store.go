package store

import (
	"context"

	"github.com/strideiq/policyengine/internal/rules"
)

// RuleStore defines the interface for rule persistence operations.
// Implementations must be thread-safe and support concurrent access.
//
// Rule ordering is part of the contract: ListRules and ActiveRules return
// rules in a stable order (insertion order for the in-memory and file
// stores, creation order for postgres), because input order is the final
// tie-break during conflict resolution and fixes the trace layout.
type RuleStore interface {
	// ActiveRules retrieves the rules with Active set for the given org.
	// Returns an empty slice if no rules are found.
	ActiveRules(ctx context.Context, orgID string) ([]rules.Rule, error)

	// ListRules retrieves every rule for the given org, active or not.
	ListRules(ctx context.Context, orgID string) ([]rules.Rule, error)

	// UpsertRule creates or updates a rule. If a rule with the same id
	// exists for the org, it is replaced in place.
	UpsertRule(ctx context.Context, orgID string, rule rules.Rule) error

	// DeleteRule removes a rule by id. Removing a rule that does not exist
	// is not an error (idempotent).
	DeleteRule(ctx context.Context, orgID, id string) error

	// Close releases any resources held by the store.
	Close() error
}
