package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is a persisted audit record pairing an expense snapshot with its
// evaluation result. Snapshots are stored as raw JSON so the sink never
// depends on engine types.
type Entry struct {
	ID        string          `json:"id"`
	OrgID     string          `json:"orgId"`
	Expense   json.RawMessage `json:"expenseJson"`
	Result    json.RawMessage `json:"resultJson"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Sink defines the interface for persisting and reading back audit entries.
// Record is best-effort from the evaluation path's perspective: failures are
// logged by the Service and never surface as evaluation errors.
type Sink interface {
	// Record appends one audit entry.
	Record(ctx context.Context, entry Entry) error

	// Recent returns up to limit entries for an org, newest first.
	Recent(ctx context.Context, orgID string, limit int) ([]Entry, error)
}

// Clock interface for testable time operations.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator interface for testable ID generation.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator implements IDGenerator using UUID v4 with the audit prefix.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() string {
	return "aud_" + uuid.NewString()
}
