package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/strideiq/policyengine/internal/rules"
)

// Evaluate runs the full rule set against one expense and returns the
// assembled result: matched rule ids in input order, the winning rule, its
// actions verbatim, and a per-rule trace covering every rule considered.
//
// Evaluate is a pure function over immutable inputs. It never fails: the
// identifier precondition belongs to the API layer, malformed rule sets are
// accepted as-is, and every conversion problem inside a condition resolves
// to a non-match.
func Evaluate(expense *Expense, ruleSet []rules.Rule) Result {
	result := Result{
		MatchedRules: []string{},
		Actions:      []string{},
		Trace:        make([]TraceItem, 0, len(ruleSet)),
	}

	var matched []rules.Rule
	for _, rule := range ruleSet {
		ok, reason := evaluateRule(rule, expense)
		result.Trace = append(result.Trace, TraceItem{Rule: rule.ID, Matched: ok, Reason: reason})
		if ok {
			matched = append(matched, rule)
			result.MatchedRules = append(result.MatchedRules, rule.ID)
		}
	}

	if len(matched) == 0 {
		return result
	}

	winner := pickWinner(matched)
	id := winner.ID
	result.WinningRule = &id
	result.Actions = append(result.Actions, winner.Actions...)
	return result
}

// evaluateRule applies the conjunction of a rule's conditions to the expense.
// Inactive rules are never evaluated and trace as "inactive". Every condition
// is evaluated even after a miss so the trace stays complete; the conjunction
// outcome is identical either way.
func evaluateRule(rule rules.Rule, expense *Expense) (bool, string) {
	if !rule.Active {
		return false, reasonInactive
	}

	matched := true
	fragments := make([]string, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		ok := matchCondition(cond, expense)
		fragments = append(fragments, fmt.Sprintf("%s%s%v:%t", cond.Field, cond.Op, cond.Value, ok))
		if !ok {
			matched = false
		}
	}

	return matched, strings.Join(fragments, " && ")
}

// matchCondition decides match/no-match for a single condition. This is the
// only place type-coercion risk lives; all failure modes resolve to false.
func matchCondition(cond rules.Condition, expense *Expense) bool {
	handler, ok := getOperatorHandler(cond.Op)
	if !ok {
		return false
	}
	left, _ := expense.fieldValue(cond.Field)
	return handler.Check(left, cond.Value)
}

// pickWinner selects the single winning rule among the matched set: highest
// priority first, then most conditions. Exact ties keep the input order, so
// the earliest-listed rule wins. Callers guarantee matched is non-empty.
func pickWinner(matched []rules.Rule) rules.Rule {
	ranked := make([]rules.Rule, len(matched))
	copy(ranked, matched)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority > ranked[j].Priority
		}
		return len(ranked[i].Conditions) > len(ranked[j].Conditions)
	})
	return ranked[0]
}
