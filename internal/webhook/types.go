// Package webhook delivers policy events to configured HTTP endpoints.
// Delivery is asynchronous and best-effort: a slow or failing endpoint never
// blocks rule management or expense evaluation.
package webhook

import (
	"encoding/json"
	"time"
)

// Event types dispatched by the policy engine.
const (
	EventRuleUpdated    = "rule.updated"
	EventRuleDeleted    = "rule.deleted"
	EventExpenseFlagged = "expense.flagged"
)

// Resource identifies the object an event is about.
type Resource struct {
	Kind string `json:"kind"` // "rule" or "expense"
	ID   string `json:"id"`
}

// Event is the payload POSTed to subscriber endpoints. Data carries the
// event-specific document (the rule, or the expense plus its evaluation
// result) as raw JSON.
type Event struct {
	Type      string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	OrgID     string          `json:"org_id"`
	Resource  Resource        `json:"resource"`
	Data      json.RawMessage `json:"data,omitempty"`
}
