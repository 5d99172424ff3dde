package store

import (
	"context"
	"sync"
	"time"

	"github.com/strideiq/policyengine/internal/rules"
)

// MemoryStore is an in-memory implementation of the RuleStore interface.
// It keeps per-org rule slices guarded by an RWMutex and preserves the
// insertion order of rules. Suitable for development, testing, or
// single-instance deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	orgs map[string][]rules.Rule
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs: make(map[string][]rules.Rule),
	}
}

// Seed inserts the given rules for an org, replacing anything present.
func (m *MemoryStore) Seed(orgID string, set []rules.Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seeded := make([]rules.Rule, len(set))
	copy(seeded, set)
	m.orgs[orgID] = seeded
}

// ActiveRules returns the active rules for an org in insertion order.
func (m *MemoryStore) ActiveRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.orgs[orgID]
	result := make([]rules.Rule, 0, len(set))
	for _, rule := range set {
		if rule.Active {
			result = append(result, rule)
		}
	}
	return result, nil
}

// ListRules returns every rule for an org in insertion order.
func (m *MemoryStore) ListRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.orgs[orgID]
	result := make([]rules.Rule, len(set))
	copy(result, set)
	return result, nil
}

// UpsertRule creates or replaces a rule, keeping its position when it
// already exists.
func (m *MemoryStore) UpsertRule(ctx context.Context, orgID string, rule rules.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rule.CreatedAt == nil {
		now := time.Now().UTC()
		rule.CreatedAt = &now
	}

	set := m.orgs[orgID]
	for i, existing := range set {
		if existing.ID == rule.ID {
			set[i] = rule
			return nil
		}
	}
	m.orgs[orgID] = append(set, rule)
	return nil
}

// DeleteRule removes a rule by id. Idempotent.
func (m *MemoryStore) DeleteRule(ctx context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.orgs[orgID]
	for i, existing := range set {
		if existing.ID == id {
			m.orgs[orgID] = append(set[:i], set[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
