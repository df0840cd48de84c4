package markup

import "reflect"

// getter turns a combinator argument into a Func: strings are paths,
// deferred functions are used as is, any other value is a constant.
func getter(v any) Func {
	if p, ok := v.(string); ok {
		return Path(p)
	}
	if f, ok := asFunc(v); ok {
		return f
	}
	return func(*Scope) any { return v }
}

// Each renders content once per element of a collection. collection is
// a path, a deferred function or a literal slice. Each iteration runs in
// a scope exposing entry, index, parent and $root. A falsy collection
// renders nothing; a value that is not a slice or array is an error.
func Each(collection any, content ...any) *Deferred {
	get := getter(collection)

	return &Deferred{
		kind: "each",
		fn: func(s *Scope, buf *Buffer, escaped bool) error {
			items := get(s)
			if !Truthy(items) {
				return nil
			}

			if list, ok := items.([]any); ok {
				for i, entry := range list {
					if err := renderAll(content, s.iterate(entry, i), buf, escaped); err != nil {
						return err
					}
				}
				return nil
			}

			rv := reflect.ValueOf(items)
			for rv.Kind() == reflect.Pointer {
				if rv.IsNil() {
					return nil
				}
				rv = rv.Elem()
			}
			if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
				return renderTypeError(items)
			}

			for i := 0; i < rv.Len(); i++ {
				if err := renderAll(content, s.iterate(rv.Index(i).Interface(), i), buf, escaped); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// Within renders content in a scope shifted onto the value returned by
// shift. The new scope resolves names against that value and exposes
// $parent (the enclosing scope) and $root.
func Within(shift any, content ...any) *Deferred {
	get := getter(shift)

	return &Deferred{
		kind: "within",
		fn: func(s *Scope, buf *Buffer, escaped bool) error {
			return renderAll(content, s.shift(get(s)), buf, escaped)
		},
	}
}

// Group renders content in sequence with no wrapping markup.
func Group(content ...any) *Deferred {
	return &Deferred{
		kind: "group",
		fn: func(s *Scope, buf *Buffer, escaped bool) error {
			return renderAll(content, s, buf, escaped)
		},
	}
}

// Safe renders content without escaping, regardless of the caller's
// escaping mode. Nested elements and attributes are not escaped either.
func Safe(content ...any) *Deferred {
	return &Deferred{
		kind: "safe",
		fn: func(s *Scope, buf *Buffer, _ bool) error {
			return renderAll(content, s, buf, true)
		},
	}
}

// If renders ifTrue when cond holds and ifFalse otherwise. cond may be a
// Match or map[string]any (declarative matcher), a path, or a deferred
// function whose result is tested with Truthy.
func If(cond any, ifTrue any, ifFalse ...any) *Deferred {
	var test Func
	switch c := cond.(type) {
	case Match:
		test = c.Func()
	case map[string]any:
		test = Match(c).Func()
	default:
		test = getter(cond)
	}

	return &Deferred{
		kind: "if",
		fn: func(s *Scope, buf *Buffer, escaped bool) error {
			if Truthy(test(s)) {
				return RenderValue(ifTrue, s, buf, escaped)
			}
			return renderAll(ifFalse, s, buf, escaped)
		},
	}
}
