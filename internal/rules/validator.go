package rules

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by ValidateRule and ValidateSet.
var (
	ErrInvalidRule      = errors.New("invalid rule")
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidValueType = errors.New("invalid value type")
	ErrDuplicateRuleID  = errors.New("duplicate rule id")
)

// validOperators is the set of all recognised policy operators in canonical
// form. Aliases are normalised before the lookup.
var validOperators = map[Operator]struct{}{
	OpGT:       {},
	OpLT:       {},
	OpGTE:      {},
	OpLTE:      {},
	OpEq:       {},
	OpIn:       {},
	OpContains: {},
}

// ValidateRule performs strict validation of a policy Rule. It is a pure
// function: it never mutates r and has no side effects.
//
// Validation lives at the rule-source boundary; the evaluation engine itself
// accepts any rule set as-is and fails unknown operators closed.
func ValidateRule(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("%w: rule id must not be empty", ErrInvalidRule)
	}

	if r.Name == "" {
		return fmt.Errorf("%w: rule %q name must not be empty", ErrInvalidRule, r.ID)
	}

	for i, c := range r.Conditions {
		if err := validateCondition(i, c); err != nil {
			return fmt.Errorf("rule %q: %w", r.ID, err)
		}
	}

	return nil
}

// ValidateSet validates every rule and enforces id uniqueness across the set.
func ValidateSet(set []Rule) error {
	seen := make(map[string]struct{}, len(set))
	for _, r := range set {
		if err := ValidateRule(r); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRuleID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

func validateCondition(i int, c Condition) error {
	if c.Field == "" {
		return fmt.Errorf("%w: condition[%d] field must not be empty", ErrInvalidCondition, i)
	}

	if _, ok := validOperators[Normalize(c.Op)]; !ok {
		return fmt.Errorf("%w: condition[%d] operator %q is not supported", ErrInvalidOperator, i, c.Op)
	}

	return validateValueType(i, c.Op, c.Value)
}

// validateValueType checks that the condition value has a type compatible with
// the operator. It uses explicit type assertions, no reflection.
func validateValueType(i int, op Operator, v any) error {
	switch Normalize(op) {
	case OpIn:
		if !isSlice(v) {
			return fmt.Errorf("%w: condition[%d] operator %q requires a slice value", ErrInvalidValueType, i, op)
		}

	case OpGT, OpLT, OpGTE, OpLTE:
		if !isNumeric(v) {
			return fmt.Errorf("%w: condition[%d] operator %q requires a numeric value", ErrInvalidValueType, i, op)
		}
	}

	return nil
}

func isSlice(v any) bool {
	switch v.(type) {
	case []any, []string, []float64, []int:
		return true
	default:
		return false
	}
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	default:
		return false
	}
}
