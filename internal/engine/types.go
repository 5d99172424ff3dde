package engine

import "time"

// Reason literals used in evaluation traces.
const reasonInactive = "inactive"

// Expense is the subject record evaluated against the rule set. All fields
// except ExpenseID are optional; a nil field is treated as absent during
// condition evaluation, never as an error.
type Expense struct {
	ExpenseID    string     `json:"expense_id"`
	Amount       *float64   `json:"amount,omitempty"`
	Category     *string    `json:"category,omitempty"`
	WorkingHours *int       `json:"working_hours,omitempty"`
	EmployeeID   *string    `json:"employee_id,omitempty"`
	Merchant     *string    `json:"merchant,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
}

// fieldValue resolves a condition field by name against the fixed expense
// schema. The second return reports presence: unknown field names and unset
// optional fields both resolve to absent.
func (e *Expense) fieldValue(name string) (any, bool) {
	if e == nil {
		return nil, false
	}

	switch name {
	case "expense_id":
		if e.ExpenseID == "" {
			return nil, false
		}
		return e.ExpenseID, true
	case "amount":
		if e.Amount == nil {
			return nil, false
		}
		return *e.Amount, true
	case "category":
		if e.Category == nil {
			return nil, false
		}
		return *e.Category, true
	case "working_hours":
		if e.WorkingHours == nil {
			return nil, false
		}
		return *e.WorkingHours, true
	case "employee_id":
		if e.EmployeeID == nil {
			return nil, false
		}
		return *e.EmployeeID, true
	case "merchant":
		if e.Merchant == nil {
			return nil, false
		}
		return *e.Merchant, true
	case "submitted_at":
		if e.SubmittedAt == nil {
			return nil, false
		}
		return *e.SubmittedAt, true
	}

	return nil, false
}

// TraceItem is the per-rule diagnostic record for one evaluation call.
// Reason is display-only and never feeds back into decision logic.
type TraceItem struct {
	Rule    string `json:"rule"`
	Matched bool   `json:"matched"`
	Reason  string `json:"reason"`
}

// Result is the deterministic output of Evaluate. MatchedRules preserves the
// input rule order; Actions is the winning rule's action sequence verbatim.
type Result struct {
	MatchedRules []string    `json:"matched_rules"`
	WinningRule  *string     `json:"winning_rule"`
	Actions      []string    `json:"actions"`
	Trace        []TraceItem `json:"trace"`
}
