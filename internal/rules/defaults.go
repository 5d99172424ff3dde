package rules

import "time"

// Defaults returns the built-in rule set used when no durable rule source is
// available. The evaluation layer substitutes these when the configured
// source fails, so an evaluation response can always be produced.
func Defaults() []Rule {
	now := time.Now().UTC()
	return []Rule{
		{
			ID:   "r1",
			Name: "Reject large expenses",
			Conditions: []Condition{
				{Field: "amount", Op: OpGT, Value: 5000},
			},
			Actions:   []string{"require_approval"},
			Active:    true,
			Priority:  10,
			CreatedAt: &now,
		},
		{
			ID:   "r2",
			Name: "Flag overtime meal",
			Conditions: []Condition{
				{Field: "amount", Op: OpGT, Value: 200},
				{Field: "working_hours", Op: OpGT, Value: 12},
			},
			Actions:   []string{"flag"},
			Active:    true,
			Priority:  20,
			CreatedAt: &now,
		},
		{
			ID:   "r3",
			Name: "Reject alcohol",
			Conditions: []Condition{
				{Field: "category", Op: OpEq, Value: "Alcohol"},
			},
			Actions:   []string{"reject"},
			Active:    true,
			Priority:  30,
			CreatedAt: &now,
		},
	}
}
