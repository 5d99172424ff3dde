package engine

import (
	"reflect"
	"testing"

	"github.com/strideiq/policyengine/internal/rules"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(n int) *int           { return &n }
func strPtr(s string) *string     { return &s }

func activeRule(id string, priority int, actions []string, conditions ...rules.Condition) rules.Rule {
	return rules.Rule{
		ID:         id,
		Name:       id,
		Conditions: conditions,
		Actions:    actions,
		Active:     true,
		Priority:   priority,
	}
}

func TestEvaluate_SingleRuleMatch(t *testing.T) {
	rule := activeRule("r1", 1, []string{"flag"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 1000})
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(1500)}

	result := Evaluate(expense, []rules.Rule{rule})

	if !reflect.DeepEqual(result.MatchedRules, []string{"r1"}) {
		t.Fatalf("MatchedRules = %v, want [r1]", result.MatchedRules)
	}
	if result.WinningRule == nil || *result.WinningRule != "r1" {
		t.Fatalf("WinningRule = %v, want r1", result.WinningRule)
	}
	if !reflect.DeepEqual(result.Actions, []string{"flag"}) {
		t.Fatalf("Actions = %v, want [flag]", result.Actions)
	}
	if len(result.Trace) != 1 || !result.Trace[0].Matched {
		t.Fatalf("Trace = %+v, want one matched item", result.Trace)
	}
}

func TestEvaluate_StringConditionValueComparesNumerically(t *testing.T) {
	rule := activeRule("r1", 1, []string{"require_approval"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: "5000"})
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(6000)}

	result := Evaluate(expense, []rules.Rule{rule})

	if result.WinningRule == nil || *result.WinningRule != "r1" {
		t.Fatalf("WinningRule = %v, want r1", result.WinningRule)
	}
	if result.Trace[0].Reason != "amount>5000:true" {
		t.Fatalf("Reason = %q, want amount>5000:true", result.Trace[0].Reason)
	}
}

func TestEvaluate_NoMatch(t *testing.T) {
	rule := activeRule("r1", 1, []string{"flag"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 5000})
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(100)}

	result := Evaluate(expense, []rules.Rule{rule})

	if len(result.MatchedRules) != 0 {
		t.Fatalf("MatchedRules = %v, want empty", result.MatchedRules)
	}
	if result.WinningRule != nil {
		t.Fatalf("WinningRule = %v, want nil", *result.WinningRule)
	}
	if len(result.Actions) != 0 {
		t.Fatalf("Actions = %v, want empty", result.Actions)
	}
	if len(result.Trace) != 1 || result.Trace[0].Matched {
		t.Fatalf("Trace = %+v, want one unmatched item", result.Trace)
	}
}

func TestEvaluate_PriorityWins(t *testing.T) {
	low := activeRule("low", 5, []string{"flag"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 200})
	high := activeRule("high", 10, []string{"reject"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 200})
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(300)}

	result := Evaluate(expense, []rules.Rule{low, high})

	if result.WinningRule == nil || *result.WinningRule != "high" {
		t.Fatalf("WinningRule = %v, want high", result.WinningRule)
	}
	// matched ids keep input order, not priority order
	if !reflect.DeepEqual(result.MatchedRules, []string{"low", "high"}) {
		t.Fatalf("MatchedRules = %v, want [low high]", result.MatchedRules)
	}
	if !reflect.DeepEqual(result.Actions, []string{"reject"}) {
		t.Fatalf("Actions = %v, want [reject]", result.Actions)
	}
}

func TestEvaluate_ConditionCountBreaksPriorityTie(t *testing.T) {
	broad := activeRule("broad", 5, []string{"flag"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 100})
	specific := activeRule("specific", 5, []string{"require_approval"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 100},
		rules.Condition{Field: "working_hours", Op: rules.OpGT, Value: 12})
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(250), WorkingHours: intPtr(14)}

	result := Evaluate(expense, []rules.Rule{broad, specific})

	if result.WinningRule == nil || *result.WinningRule != "specific" {
		t.Fatalf("WinningRule = %v, want specific", result.WinningRule)
	}
}

func TestEvaluate_ExactTieKeepsInputOrder(t *testing.T) {
	first := activeRule("first", 5, []string{"flag"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 100})
	second := activeRule("second", 5, []string{"reject"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 50})
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(500)}

	result := Evaluate(expense, []rules.Rule{first, second})
	if result.WinningRule == nil || *result.WinningRule != "first" {
		t.Fatalf("WinningRule = %v, want first (input order on exact tie)", result.WinningRule)
	}

	// swapping the input order flips the winner
	swapped := Evaluate(expense, []rules.Rule{second, first})
	if swapped.WinningRule == nil || *swapped.WinningRule != "second" {
		t.Fatalf("WinningRule = %v, want second after swap", swapped.WinningRule)
	}
}

func TestEvaluate_AbsentFieldNeverMatchesNumeric(t *testing.T) {
	rule := activeRule("r1", 1, []string{"flag"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 100})
	expense := &Expense{ExpenseID: "e1"} // no amount set

	result := Evaluate(expense, []rules.Rule{rule})

	if len(result.MatchedRules) != 0 || result.WinningRule != nil {
		t.Fatalf("expected no match for absent field, got %+v", result)
	}
}

func TestEvaluate_InactiveRule(t *testing.T) {
	rule := rules.Rule{
		ID:     "r1",
		Name:   "dormant",
		Active: false,
		Conditions: []rules.Condition{
			{Field: "amount", Op: rules.OpGT, Value: 0},
		},
		Actions:  []string{"flag"},
		Priority: 100,
	}
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(10)}

	result := Evaluate(expense, []rules.Rule{rule})

	if len(result.MatchedRules) != 0 {
		t.Fatalf("inactive rule must never match, got %v", result.MatchedRules)
	}
	if result.Trace[0].Reason != "inactive" {
		t.Fatalf("Reason = %q, want \"inactive\"", result.Trace[0].Reason)
	}
}

func TestEvaluate_ZeroConditionsVacuouslyTrue(t *testing.T) {
	rule := activeRule("catch-all", 1, []string{"flag"})
	expense := &Expense{ExpenseID: "e1"}

	result := Evaluate(expense, []rules.Rule{rule})

	if result.WinningRule == nil || *result.WinningRule != "catch-all" {
		t.Fatalf("zero-condition active rule must match, got %+v", result)
	}
	if result.Trace[0].Reason != "" {
		t.Fatalf("Reason = %q, want empty for zero conditions", result.Trace[0].Reason)
	}
}

func TestEvaluate_TraceReasonFormat(t *testing.T) {
	rule := activeRule("r2", 20, []string{"flag"},
		rules.Condition{Field: "amount", Op: rules.OpGT, Value: 200},
		rules.Condition{Field: "working_hours", Op: rules.OpGT, Value: 12})
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(500), WorkingHours: intPtr(8)}

	result := Evaluate(expense, []rules.Rule{rule})

	want := "amount>200:true && working_hours>12:false"
	if result.Trace[0].Reason != want {
		t.Fatalf("Reason = %q, want %q", result.Trace[0].Reason, want)
	}
	if result.Trace[0].Matched {
		t.Fatal("conjunction with one failed condition must not match")
	}
}

func TestEvaluate_TraceCoversAllRulesInInputOrder(t *testing.T) {
	set := []rules.Rule{
		activeRule("a", 1, nil, rules.Condition{Field: "amount", Op: rules.OpGT, Value: 1}),
		{ID: "b", Name: "b", Active: false},
		activeRule("c", 2, nil, rules.Condition{Field: "amount", Op: rules.OpLT, Value: 1}),
	}
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(10)}

	result := Evaluate(expense, set)

	if len(result.Trace) != 3 {
		t.Fatalf("Trace length = %d, want 3 (inactive rules included)", len(result.Trace))
	}
	for i, id := range []string{"a", "b", "c"} {
		if result.Trace[i].Rule != id {
			t.Fatalf("Trace[%d].Rule = %q, want %q", i, result.Trace[i].Rule, id)
		}
	}
}

func TestEvaluate_UnknownOperatorAndFieldFailClosed(t *testing.T) {
	set := []rules.Rule{
		activeRule("bad-op", 1, []string{"flag"},
			rules.Condition{Field: "amount", Op: rules.Operator("regex"), Value: ".*"}),
		activeRule("bad-field", 1, []string{"flag"},
			rules.Condition{Field: "no_such_field", Op: rules.OpEq, Value: "x"}),
	}
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(10)}

	result := Evaluate(expense, set)

	if len(result.MatchedRules) != 0 {
		t.Fatalf("expected fail-closed non-matches, got %v", result.MatchedRules)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	set := rules.Defaults()
	expense := &Expense{
		ExpenseID:    "e1",
		Amount:       floatPtr(250),
		WorkingHours: intPtr(14),
		Category:     strPtr("Meals"),
	}

	first := Evaluate(expense, set)
	second := Evaluate(expense, set)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Evaluate must be deterministic, got %#v and %#v", first, second)
	}
	if first.WinningRule == nil || *first.WinningRule != "r2" {
		t.Fatalf("WinningRule = %v, want r2 (overtime meal)", first.WinningRule)
	}
}

func TestEvaluate_DefaultRules_AlcoholRejected(t *testing.T) {
	expense := &Expense{ExpenseID: "e1", Amount: floatPtr(40), Category: strPtr("Alcohol")}

	result := Evaluate(expense, rules.Defaults())

	if result.WinningRule == nil || *result.WinningRule != "r3" {
		t.Fatalf("WinningRule = %v, want r3", result.WinningRule)
	}
	if !reflect.DeepEqual(result.Actions, []string{"reject"}) {
		t.Fatalf("Actions = %v, want [reject]", result.Actions)
	}
}
