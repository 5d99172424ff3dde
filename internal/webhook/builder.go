package webhook

import (
	"encoding/json"
	"time"
)

// NewRuleEvent builds a rule.updated or rule.deleted event. The rule document
// may be nil for deletions.
func NewRuleEvent(eventType, orgID, ruleID string, rule any) Event {
	var data json.RawMessage
	if rule != nil {
		data, _ = json.Marshal(rule)
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		OrgID:     orgID,
		Resource:  Resource{Kind: "rule", ID: ruleID},
		Data:      data,
	}
}

// flaggedPayload pairs the evaluated expense with its result in the event body.
type flaggedPayload struct {
	Expense any `json:"expense"`
	Result  any `json:"result"`
}

// NewExpenseFlaggedEvent builds an expense.flagged event carrying the expense
// snapshot and the evaluation result.
func NewExpenseFlaggedEvent(orgID, expenseID string, expense, result any) Event {
	data, _ := json.Marshal(flaggedPayload{Expense: expense, Result: result})
	return Event{
		Type:      EventExpenseFlagged,
		Timestamp: time.Now().UTC(),
		OrgID:     orgID,
		Resource:  Resource{Kind: "expense", ID: expenseID},
		Data:      data,
	}
}
