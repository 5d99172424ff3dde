package rules

import (
	"strings"
	"time"
)

// Operator represents a comparison operator used in policy conditions.
type Operator string

// Supported policy operators. The symbolic forms are the canonical wire
// representation; Normalize maps the common word aliases onto them.
const (
	OpGT       Operator = ">"
	OpLT       Operator = "<"
	OpGTE      Operator = ">="
	OpLTE      Operator = "<="
	OpEq       Operator = "=="
	OpIn       Operator = "in"
	OpContains Operator = "contains"
)

// Normalize maps operator aliases onto the canonical operator set.
// Unknown operators are returned unchanged so the evaluator can fail
// them closed.
func Normalize(op Operator) Operator {
	switch strings.ToLower(strings.TrimSpace(string(op))) {
	case ">", "gt":
		return OpGT
	case "<", "lt":
		return OpLT
	case ">=", "gte":
		return OpGTE
	case "<=", "lte":
		return OpLTE
	case "==", "eq", "equals":
		return OpEq
	case "in", "in_list":
		return OpIn
	case "contains":
		return OpContains
	default:
		return op
	}
}

// Condition represents a single field/operator/value predicate.
// When multiple conditions belong to one Rule, they are evaluated with AND
// semantics: all conditions must match for the rule to apply.
type Condition struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// Rule represents a named, prioritized conjunction of conditions mapping to
// a sequence of action tokens. Higher priority wins; condition count breaks
// priority ties.
type Rule struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Conditions []Condition `json:"conditions"`
	Actions    []string    `json:"actions"`
	Active     bool        `json:"active"`
	Priority   int         `json:"priority"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
}
