package markup

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Node is a value the renderer knows how to flatten into text. The set of
// implementations is closed: nothing, Text, Number, Time, Func, List and
// *Deferred. Other Go values are converted with NodeOf.
type Node interface {
	renderTo(s *Scope, buf *Buffer, escaped bool) error
}

// nothing renders no output.
type nothing struct{}

func (nothing) renderTo(*Scope, *Buffer, bool) error { return nil }

// Text is a string written escaped unless escaping is disabled.
type Text string

func (t Text) renderTo(_ *Scope, buf *Buffer, escaped bool) error {
	if escaped {
		buf.WriteString(string(t))
	} else {
		buf.WriteString(escapeString(string(t)))
	}
	return nil
}

// Number is a numeric value in canonical decimal form. It is never escaped.
type Number struct {
	text string
}

// Int returns the Number for an integer.
func Int(n int64) Number { return Number{text: strconv.FormatInt(n, 10)} }

// Uint returns the Number for an unsigned integer.
func Uint(n uint64) Number { return Number{text: strconv.FormatUint(n, 10)} }

// Float returns the Number for a float. Values in [1e-6, 1e21) are written
// in plain decimal notation, others in exponent notation ("1e+21").
func Float(f float64) Number { return Number{text: formatFloat(f, 64)} }

// String returns the decimal text.
func (n Number) String() string { return n.text }

func (n Number) renderTo(_ *Scope, buf *Buffer, _ bool) error {
	buf.WriteString(n.text)
	return nil
}

// MarshalJSON writes the decimal text as a JSON number. Values JSON cannot
// represent (NaN, the infinities) become null.
func (n Number) MarshalJSON() ([]byte, error) {
	switch n.text {
	case "", "NaN", "Infinity", "-Infinity":
		return []byte("null"), nil
	}
	return []byte(n.text), nil
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	s := strconv.FormatFloat(f, 'e', -1, bits)
	mantissa, exp, _ := strings.Cut(s, "e")
	return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// TimeFormat is the layout used for Time values.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Time is a point in time written as a UTC timestamp. It is never escaped.
type Time time.Time

func (t Time) renderTo(_ *Scope, buf *Buffer, _ bool) error {
	buf.WriteString(formatTime(time.Time(t)))
	return nil
}

// MarshalJSON writes the timestamp as a JSON string in TimeFormat.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + formatTime(time.Time(t)) + `"`), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Func is a deferred value: it is called with the current scope at render
// time and whatever it returns is rendered in its place.
type Func func(s *Scope) any

func (f Func) renderTo(s *Scope, buf *Buffer, escaped bool) error {
	if f == nil {
		return nil
	}
	return RenderValue(f(s), s, buf, escaped)
}

// List is an ordered sequence of values rendered one after another.
type List []any

func (l List) renderTo(s *Scope, buf *Buffer, escaped bool) error {
	return renderAll(l, s, buf, escaped)
}

// NodeOf converts an arbitrary value into a Node. It fails with
// ErrRenderType for maps, structs, channels and other values that have
// no text form.
func NodeOf(v any) (Node, error) {
	switch x := v.(type) {
	case nil:
		return nothing{}, nil
	case Node:
		return x, nil
	case string:
		if x == "" {
			return nothing{}, nil
		}
		return Text(x), nil
	case bool:
		return nothing{}, nil
	case time.Time:
		return Time(x), nil
	case *time.Time:
		if x == nil {
			return nothing{}, nil
		}
		return Time(*x), nil
	case []any:
		return List(x), nil
	}

	if f, ok := asFunc(v); ok {
		return f, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return NodeOf(rv.String())
	case reflect.Bool:
		return nothing{}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32:
		return Number{text: formatFloat(rv.Float(), 32)}, nil
	case reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nothing{}, nil
		}
		items := make(List, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nothing{}, nil
		}
		return NodeOf(rv.Elem().Interface())
	}

	return nil, renderTypeError(v)
}

// asFunc recognizes the function shapes accepted as deferred values.
func asFunc(v any) (Func, bool) {
	switch f := v.(type) {
	case Func:
		return f, f != nil
	case func(*Scope) any:
		return f, f != nil
	case func(*Scope) string:
		if f == nil {
			return nil, false
		}
		return func(s *Scope) any { return f(s) }, true
	case func(*Scope) bool:
		if f == nil {
			return nil, false
		}
		return func(s *Scope) any { return f(s) }, true
	case func(*Scope) Node:
		if f == nil {
			return nil, false
		}
		return func(s *Scope) any { return f(s) }, true
	case func() any:
		if f == nil {
			return nil, false
		}
		return func(*Scope) any { return f() }, true
	}
	return nil, false
}
