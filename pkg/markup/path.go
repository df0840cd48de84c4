package markup

import (
	"reflect"
	"strconv"
	"strings"
)

// Path returns a Func resolving a dotted path such as "entry.val" or
// "$root.user.name" against the scope. Segments walk scopes, maps with
// string keys, struct fields (by json tag, then name, then
// case-insensitively) and slice indexes. A missing segment yields nil.
func Path(path string) Func {
	segments := splitPath(path)
	return func(s *Scope) any {
		return walk(s, segments)
	}
}

// lookupPath resolves a dotted path against any value.
func lookupPath(v any, path string) any {
	return walk(v, splitPath(path))
}

func walk(v any, segments []string) any {
	cur := v
	for _, seg := range segments {
		next, ok := field(cur, seg)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func splitPath(path string) []string {
	parts := strings.Split(path, ".")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// field resolves one path segment on v.
func field(v any, name string) (any, bool) {
	switch c := v.(type) {
	case nil:
		return nil, false
	case *Scope:
		if c == nil {
			return nil, false
		}
		return c.Lookup(name)
	case map[string]any:
		val, ok := c[name]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		keyType := rv.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(name).Convert(keyType))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		return structField(rv, name)
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (any, bool) {
	t := rv.Type()
	fallback := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == name {
			return rv.Field(i).Interface(), true
		}
		if f.Name == name {
			return rv.Field(i).Interface(), true
		}
		if fallback < 0 && strings.EqualFold(f.Name, name) {
			fallback = i
		}
	}
	if fallback >= 0 {
		return rv.Field(fallback).Interface(), true
	}
	return nil, false
}
