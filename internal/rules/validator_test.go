package rules

import (
	"errors"
	"testing"
)

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr error
	}{
		{
			name: "valid rule",
			rule: Rule{ID: "r1", Name: "big", Conditions: []Condition{
				{Field: "amount", Op: OpGT, Value: 5000},
			}},
			wantErr: nil,
		},
		{
			name:    "empty id",
			rule:    Rule{Name: "big"},
			wantErr: ErrInvalidRule,
		},
		{
			name:    "empty name",
			rule:    Rule{ID: "r1"},
			wantErr: ErrInvalidRule,
		},
		{
			name:    "zero conditions allowed",
			rule:    Rule{ID: "r1", Name: "catch-all"},
			wantErr: nil,
		},
		{
			name: "empty condition field",
			rule: Rule{ID: "r1", Name: "big", Conditions: []Condition{
				{Field: "", Op: OpGT, Value: 1},
			}},
			wantErr: ErrInvalidCondition,
		},
		{
			name: "unknown operator",
			rule: Rule{ID: "r1", Name: "big", Conditions: []Condition{
				{Field: "amount", Op: Operator("regex"), Value: ".*"},
			}},
			wantErr: ErrInvalidOperator,
		},
		{
			name: "alias operator accepted",
			rule: Rule{ID: "r1", Name: "big", Conditions: []Condition{
				{Field: "amount", Op: Operator("gte"), Value: 100},
			}},
			wantErr: nil,
		},
		{
			name: "numeric operator with string value",
			rule: Rule{ID: "r1", Name: "big", Conditions: []Condition{
				{Field: "amount", Op: OpGT, Value: "lots"},
			}},
			wantErr: ErrInvalidValueType,
		},
		{
			name: "in with scalar value",
			rule: Rule{ID: "r1", Name: "cats", Conditions: []Condition{
				{Field: "category", Op: OpIn, Value: "Meals"},
			}},
			wantErr: ErrInvalidValueType,
		},
		{
			name: "in with slice value",
			rule: Rule{ID: "r1", Name: "cats", Conditions: []Condition{
				{Field: "category", Op: OpIn, Value: []any{"Meals", "Travel"}},
			}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateRule() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateRule() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSetRejectsDuplicateIDs(t *testing.T) {
	set := []Rule{
		{ID: "r1", Name: "a"},
		{ID: "r1", Name: "b"},
	}
	if err := ValidateSet(set); !errors.Is(err, ErrDuplicateRuleID) {
		t.Fatalf("ValidateSet() = %v, want ErrDuplicateRuleID", err)
	}
}
