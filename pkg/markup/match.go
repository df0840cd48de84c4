package markup

import (
	"reflect"
	"sort"
)

// Match is a declarative condition for If. Each key is a path resolved
// against the scope; the value is what it must equal. Values may also be
// a nested Match (applied to the resolved value), a func(any) bool
// predicate, or a Func evaluated against the scope before comparing.
// An empty Match always holds.
type Match map[string]any

// Func returns the matcher as a deferred value yielding a bool.
func (m Match) Func() Func {
	return func(s *Scope) any {
		return m.matches(s, s)
	}
}

func (m Match) matches(target any, s *Scope) bool {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !matchValue(lookupPath(target, k), m[k], s) {
			return false
		}
	}
	return true
}

func matchValue(actual, expected any, s *Scope) bool {
	switch e := expected.(type) {
	case Match:
		return e.matches(actual, s)
	case map[string]any:
		return Match(e).matches(actual, s)
	case func(any) bool:
		return e(actual)
	case Func:
		return equal(actual, e(s))
	case func(*Scope) any:
		return equal(actual, e(s))
	}
	return equal(actual, expected)
}

// equal compares numbers by value regardless of their Go type and
// everything else with reflect.DeepEqual.
func equal(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
