package pulse

import "reflect"

// Comparer reports whether two values are equal for change-detection
// purposes. A write (or a recomputed value) that compares equal does not
// invalidate dependents or fire effects.
type Comparer func(a, b any) bool

// Identity is the default comparer: Go equality for comparable kinds, with
// a deep-equality fallback for values that cannot be compared with ==.
var Identity Comparer = defaultEquals

// Structural compares values by structure rather than identity. Select it
// per reaction with Structurally, or pass it to WithEquals.
var Structural Comparer = func(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// defaultEquals provides the default equality check. Common scalar types
// take a fast typed path; everything else falls back to reflect.DeepEqual,
// which never panics on uncomparable kinds the way == on any would.
func defaultEquals(a, b any) bool {
	switch av := a.(type) {
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int8:
		bv, ok := b.(int8)
		return ok && av == bv
	case int16:
		bv, ok := b.(int16)
		return ok && av == bv
	case int32:
		bv, ok := b.(int32)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint:
		bv, ok := b.(uint)
		return ok && av == bv
	case uint8:
		bv, ok := b.(uint8)
		return ok && av == bv
	case uint16:
		bv, ok := b.(uint16)
		return ok && av == bv
	case uint32:
		bv, ok := b.(uint32)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case float32:
		bv, ok := b.(float32)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}

// typedEquals applies a typed comparer when one is configured, falling back
// to defaultEquals otherwise. Shared by Atom, Computed, and Watch.
func typedEquals[T any](custom func(T, T) bool, a, b T) bool {
	if custom != nil {
		return custom(a, b)
	}
	return defaultEquals(a, b)
}
