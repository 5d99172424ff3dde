package audit

import (
	"context"
	"sync"
)

// MemorySink is a bounded, mutex-guarded in-process audit log. Entries are
// kept newest first; once the configured capacity is exceeded the oldest
// entries are evicted, so the log never grows without bound.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// DefaultMaxEntries bounds the in-memory audit log when no capacity is
// configured.
const DefaultMaxEntries = 200

// NewMemorySink creates a bounded in-memory sink. A non-positive max falls
// back to DefaultMaxEntries.
func NewMemorySink(max int) *MemorySink {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &MemorySink{max: max}
}

// Record prepends the entry and evicts the oldest entries past capacity.
func (m *MemorySink) Record(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append([]Entry{entry}, m.entries...)
	if len(m.entries) > m.max {
		m.entries = m.entries[:m.max]
	}
	return nil
}

// Recent returns up to limit entries for an org, newest first.
func (m *MemorySink) Recent(ctx context.Context, orgID string, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Entry, 0, limit)
	for _, entry := range m.entries {
		if entry.OrgID != orgID {
			continue
		}
		result = append(result, entry)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// Len reports the number of retained entries across all orgs.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
