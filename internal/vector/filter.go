package vector

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFilter is returned for unknown operators or malformed operands.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter restricts query results by metadata. Each key maps to either a scalar
// (equality) or an operator map using "$eq", "$ne", "$in", or "$nin".
// All conditions must hold.
//
//	Filter{"role_category": "Data Analyst", "scan_id": map[string]any{"$ne": "abc"}}
type Filter map[string]any

// Validate checks operators and operand shapes.
func (f Filter) Validate() error {
	for key, cond := range f {
		ops, ok := cond.(map[string]any)
		if !ok {
			if !isScalar(cond) {
				return fmt.Errorf("%w: %q: unsupported value %T", ErrInvalidFilter, key, cond)
			}
			continue
		}
		for op, arg := range ops {
			switch op {
			case "$eq", "$ne":
				if !isScalar(arg) {
					return fmt.Errorf("%w: %q %s: unsupported value %T", ErrInvalidFilter, key, op, arg)
				}
			case "$in", "$nin":
				if _, ok := toList(arg); !ok {
					return fmt.Errorf("%w: %q %s: expects a list", ErrInvalidFilter, key, op)
				}
			default:
				return fmt.Errorf("%w: %q: unknown operator %s", ErrInvalidFilter, key, op)
			}
		}
	}
	return nil
}

// Matches reports whether m satisfies every condition in f. Call Validate first.
func (f Filter) Matches(m Metadata) bool {
	for key, cond := range f {
		v, present := m[key]
		ops, ok := cond.(map[string]any)
		if !ok {
			ops = map[string]any{"$eq": cond}
		}
		for op, arg := range ops {
			switch op {
			case "$eq":
				if !present || !scalarEqual(v, arg) {
					return false
				}
			case "$ne":
				if present && scalarEqual(v, arg) {
					return false
				}
			case "$in":
				list, _ := toList(arg)
				if !present || !containsScalar(list, v) {
					return false
				}
			case "$nin":
				list, _ := toList(arg)
				if present && containsScalar(list, v) {
					return false
				}
			}
		}
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return true
	}
	return false
}

func toList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func containsScalar(list []any, v any) bool {
	for _, item := range list {
		if scalarEqual(item, v) {
			return true
		}
	}
	return false
}

// scalarEqual compares numbers by value regardless of Go type.
func scalarEqual(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
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
	}
	return 0, false
}

// formatScalar renders a scalar the way JSON text extraction does.
func formatScalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
