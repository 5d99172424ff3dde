package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/strideiq/policyengine/internal/rules"
)

// OperatorHandler evaluates one condition operator. The left side is the
// expense field value (nil when absent), the right side the condition value.
// Handlers are total: every coercion failure resolves to false.
type OperatorHandler interface {
	Check(left, right any) bool
}

var operatorHandlers = map[rules.Operator]OperatorHandler{
	rules.OpGT:       numericCompareHandler{cmp: func(a, b float64) bool { return a > b }},
	rules.OpLT:       numericCompareHandler{cmp: func(a, b float64) bool { return a < b }},
	rules.OpGTE:      numericCompareHandler{cmp: func(a, b float64) bool { return a >= b }},
	rules.OpLTE:      numericCompareHandler{cmp: func(a, b float64) bool { return a <= b }},
	rules.OpEq:       equalsHandler{},
	rules.OpIn:       membershipHandler{},
	rules.OpContains: containsHandler{},
}

func getOperatorHandler(op rules.Operator) (OperatorHandler, bool) {
	h, ok := operatorHandlers[rules.Normalize(op)]
	return h, ok
}

type numericCompareHandler struct {
	cmp func(a, b float64) bool
}

func (h numericCompareHandler) Check(left, right any) bool {
	l, ok := comparableFloat64(left)
	if !ok {
		return false
	}
	r, ok := comparableFloat64(right)
	if !ok {
		return false
	}
	return h.cmp(l, r)
}

// comparableFloat64 widens like toFloat64 and additionally parses numeric
// strings, so a condition value of "5000" orders against an amount of 6000.
// Only the ordering operators coerce strings; equality stays within a kind.
func comparableFloat64(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return toFloat64(v)
}

type equalsHandler struct{}

// Check compares structurally within a kind: strings to strings, numbers to
// numbers (widened), bools to bools. Absent left compares equal only to an
// explicit null right.
func (equalsHandler) Check(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if l, ok := left.(string); ok {
		r, ok := right.(string)
		return ok && l == r
	}
	if l, ok := toFloat64(left); ok {
		r, ok := toFloat64(right)
		return ok && l == r
	}
	if l, ok := left.(bool); ok {
		r, ok := right.(bool)
		return ok && l == r
	}
	return false
}

type membershipHandler struct{}

func (membershipHandler) Check(left, right any) bool {
	if left == nil {
		return false
	}
	items, ok := toSlice(right)
	if !ok {
		return false
	}
	for _, item := range items {
		if (equalsHandler{}).Check(left, item) {
			return true
		}
	}
	return false
}

type containsHandler struct{}

// Check reports case-insensitive substring containment. The left side must
// already be a string; the right side is lowered in its string form.
func (containsHandler) Check(left, right any) bool {
	l, ok := left.(string)
	if !ok {
		return false
	}
	if right == nil {
		return false
	}
	return strings.Contains(strings.ToLower(l), strings.ToLower(fmt.Sprint(right)))
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toSlice(v any) ([]any, bool) {
	switch values := v.(type) {
	case []any:
		return values, true
	case []string:
		result := make([]any, len(values))
		for i, s := range values {
			result[i] = s
		}
		return result, true
	case []float64:
		result := make([]any, len(values))
		for i, f := range values {
			result[i] = f
		}
		return result, true
	case []int:
		result := make([]any, len(values))
		for i, n := range values {
			result[i] = n
		}
		return result, true
	default:
		return nil, false
	}
}
