package markup

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Attr is a single attribute. Value may be a literal, a Func resolved at
// render time, or a map, slice or struct that is written as JSON.
type Attr struct {
	Name  string
	Value any
}

// A is shorthand for Attr{Name: name, Value: value}.
func A(name string, value any) Attr {
	return Attr{Name: name, Value: value}
}

// Attrs is an ordered attribute list. Attributes render in the order
// their names were first introduced.
type Attrs []Attr

// Has reports whether an attribute with the given name is present.
func (a Attrs) Has(name string) bool {
	for _, attr := range a {
		if attr.Name == name {
			return true
		}
	}
	return false
}

// Get returns the raw value of the named attribute.
func (a Attrs) Get(name string) (any, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return nil, false
}

// with sets name to value, keeping the position of an existing entry.
// The receiver must be owned by the caller.
func (a Attrs) with(name string, value any) Attrs {
	for i := range a {
		if a[i].Name == name {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Name: name, Value: value})
}

// Set returns a copy of a with name set to value. An existing entry keeps
// its position.
func (a Attrs) Set(name string, value any) Attrs {
	return a.merge(Attrs{{Name: name, Value: value}})
}

// merge returns a copy of a with every attribute of other applied on top.
func (a Attrs) merge(other Attrs) Attrs {
	out := make(Attrs, len(a), len(a)+len(other))
	copy(out, a)
	for _, attr := range other {
		out = out.with(attr.Name, attr.Value)
	}
	return out
}

// ClassToggle adds Name to the class list when On is truthy. On may be a
// Func evaluated against the scope.
type ClassToggle struct {
	Name string
	On   any
}

// Classes is an ordered set of class toggles. Passed to H it becomes the
// class attribute.
type Classes []ClassToggle

// booleanAttrs render as a bare name when truthy and are omitted otherwise.
var booleanAttrs = map[string]bool{
	"hidden":   true,
	"checked":  true,
	"required": true,
	"readonly": true,
	"selected": true,
	"disabled": true,
	"multiple": true,
}

// IsBooleanAttr reports whether name is rendered by presence only.
func IsBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

// renderAttributes resolves attrs against the scope and returns them
// joined by single spaces, without a leading space.
func renderAttributes(attrs Attrs, fixed string, s *Scope, escaped bool) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Name == "class" {
			class := resolveClass(fixed, attr.Value, s)
			if class == "" {
				continue
			}
			parts = append(parts, `class="`+maybeEscape(class, escaped)+`"`)
			continue
		}

		value, err := resolveAttr(attr.Value, s)
		if err != nil {
			return "", err
		}

		if booleanAttrs[attr.Name] {
			if Truthy(value) {
				parts = append(parts, attr.Name)
			}
			continue
		}

		if value == nil {
			continue
		}
		parts = append(parts, attr.Name+`="`+maybeEscape(stringify(value), escaped)+`"`)
	}

	return strings.Join(parts, " "), nil
}

func maybeEscape(s string, escaped bool) string {
	if escaped {
		return s
	}
	return escapeString(s)
}

// resolveAttr evaluates a deferred attribute value and serializes
// composite results as JSON.
func resolveAttr(value any, s *Scope) (any, error) {
	v := value
	if f, ok := asFunc(value); ok {
		v = f(s)
	}

	if d, ok := v.(*Deferred); ok {
		var buf Buffer
		if err := d.renderTo(s, &buf, true); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}

	if !isComposite(v) {
		return v, nil
	}

	data, err := json.Marshal(resolveComposite(v, s))
	if err != nil {
		return nil, renderTypeError(v)
	}
	return string(data), nil
}

// isComposite reports whether v is written as JSON in an attribute.
func isComposite(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case time.Time, Time, Number, Text:
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return rv.Type() != reflect.TypeOf(time.Time{})
	}
	return false
}

// resolveComposite walks maps and slices, calling any deferred values
// found inside so the JSON reflects the scope.
func resolveComposite(v any, s *Scope) any {
	if f, ok := asFunc(v); ok {
		v = f(s)
	}
	if t, ok := v.(time.Time); ok {
		return Time(t)
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = resolveComposite(iter.Value().Interface(), s)
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = resolveComposite(rv.Index(i).Interface(), s)
		}
		return out
	}
	return v
}

// resolveClass builds the class attribute: descriptor classes first, then
// the tokens contributed by value.
func resolveClass(fixed string, value any, s *Scope) string {
	var classes []string
	if fixed != "" {
		classes = append(classes, fixed)
	}
	classes = appendClasses(classes, value, s)
	return strings.Join(classes, " ")
}

func appendClasses(classes []string, value any, s *Scope) []string {
	switch v := value.(type) {
	case nil, bool:
		return classes
	case string:
		// an empty string contributes nothing
		if v != "" {
			classes = append(classes, v)
		}
		return classes
	case Text:
		return appendClasses(classes, string(v), s)
	case Classes:
		for _, t := range v {
			if toggled(t.On, s) {
				classes = append(classes, t.Name)
			}
		}
		return classes
	case map[string]bool:
		for _, name := range sortedKeys(v) {
			if v[name] {
				classes = append(classes, name)
			}
		}
		return classes
	case map[string]any:
		for _, name := range sortedKeys(v) {
			if toggled(v[name], s) {
				classes = append(classes, name)
			}
		}
		return classes
	case []string:
		for _, c := range v {
			classes = appendClasses(classes, c, s)
		}
		return classes
	}

	if f, ok := asFunc(value); ok {
		return appendClasses(classes, f(s), s)
	}
	if c := stringify(value); c != "" {
		classes = append(classes, c)
	}
	return classes
}

func toggled(on any, s *Scope) bool {
	if f, ok := asFunc(on); ok {
		return Truthy(f(s))
	}
	return Truthy(on)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringify converts a scalar to its text form.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case Text:
		return string(x)
	case Number:
		return x.text
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return formatTime(x)
	case Time:
		return formatTime(time.Time(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	}
	return fmt.Sprint(v)
}
