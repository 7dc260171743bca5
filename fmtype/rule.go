package fmtype

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Rule checks a decoded JSON value and returns its normalized form.
type Rule interface {
	Check(v any) (any, error)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(v any) (any, error)

// Check implements Rule.
func (f RuleFunc) Check(v any) (any, error) { return f(v) }

type stringRule struct{}

// String accepts strings only.
func String() Rule { return stringRule{} }

func (stringRule) Check(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %s", kind(v))
	}
	return s, nil
}

type numberOrTextRule struct{}

// NumberOrText accepts a string or a number. FileMaker number fields hold text
// when the user typed something non-numeric.
func NumberOrText() Rule { return numberOrTextRule{} }

func (numberOrTextRule) Check(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v, nil
	}
	if f, ok := number(v); ok {
		return f, nil
	}
	return nil, fmt.Errorf("expected string or number, got %s", kind(v))
}

type strictNumberRule struct{}

// StrictNumber coerces numbers and numeric strings to float64 and anything
// else to null. It never fails.
func StrictNumber() Rule { return strictNumberRule{} }

func (strictNumberRule) Check(v any) (any, error) {
	if f, ok := number(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}
	return nil, nil
}

// EnumRule accepts one of a fixed set of strings.
type EnumRule struct {
	values   []string
	fallback *string
}

// Enum accepts exactly the given strings.
func Enum(values ...string) *EnumRule {
	return &EnumRule{values: values}
}

// Catch returns a copy of the rule that maps unexpected values to fallback
// instead of failing.
func (r *EnumRule) Catch(fallback string) *EnumRule {
	return &EnumRule{values: r.values, fallback: &fallback}
}

// Values returns the accepted strings.
func (r *EnumRule) Values() []string { return slices.Clone(r.values) }

// Check implements Rule.
func (r *EnumRule) Check(v any) (any, error) {
	if s, ok := v.(string); ok && slices.Contains(r.values, s) {
		return s, nil
	}
	if r.fallback != nil {
		return *r.fallback, nil
	}
	return nil, fmt.Errorf("expected one of %s, got %s", quoteAll(r.values), describe(v))
}

type listRule struct {
	elem Rule
}

// List accepts an array whose elements all satisfy elem.
func List(elem Rule) Rule { return listRule{elem: elem} }

func (r listRule) Check(v any) (any, error) {
	var items []any
	switch v := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		items = v
	case []map[string]any:
		items = make([]any, len(v))
		for i, m := range v {
			items[i] = m
		}
	default:
		return nil, fmt.Errorf("expected array, got %s", kind(v))
	}
	out := make([]any, len(items))
	var issues Issues
	for i, item := range items {
		checked, err := r.elem.Check(item)
		if err != nil {
			issues = issues.add(strconv.Itoa(i), err)
			continue
		}
		out[i] = checked
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return out, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any, []map[string]any:
		return "array"
	case map[string]any:
		return "object"
	}
	if _, ok := number(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func describe(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return kind(v)
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
