package markup

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

// descriptor is a parsed tag#id.class1.class2 string.
type descriptor struct {
	tag     string
	id      string
	classes []string
}

// parseDescriptor splits a tag descriptor. An empty tag name defaults to
// div and empty class segments are ignored.
func parseDescriptor(desc string) descriptor {
	segments := strings.Split(desc, ".")
	tagWithID := strings.Split(segments[0], "#")

	d := descriptor{tag: tagWithID[0]}
	if len(tagWithID) > 1 {
		d.id = tagWithID[1]
	}
	if d.tag == "" {
		d.tag = "div"
	}
	for _, c := range segments[1:] {
		if c != "" {
			d.classes = append(d.classes, c)
		}
	}
	return d
}

// H builds an element from a tag descriptor and a mixed list of content
// and attributes. It panics if an argument has an unsupported type; use
// Build to get the error instead.
//
// Content arguments are strings, Nodes (including other elements and
// combinators), deferred functions and time.Time values. Attribute
// arguments are Attr, Attrs, Classes and map[string]any. nil and false
// are skipped so arguments can be made conditional inline.
func H(desc string, args ...any) *Deferred {
	d, err := Build(desc, args...)
	if err != nil {
		panic(err)
	}
	return d
}

// Build is like H but returns an ArgumentType error instead of panicking.
func Build(desc string, args ...any) (*Deferred, error) {
	var attrs Attrs
	var content []any

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case bool:
			if v {
				return nil, argumentTypeError(arg)
			}
			continue
		case Attr:
			attrs = attrs.with(v.Name, v.Value)
		case Attrs:
			for _, a := range v {
				attrs = attrs.with(a.Name, a.Value)
			}
		case Classes:
			attrs = attrs.with("class", v)
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				attrs = attrs.with(k, v[k])
			}
		case string, Node, time.Time:
			content = append(content, v)
		default:
			if f, ok := asFunc(arg); ok {
				content = append(content, f)
				continue
			}
			rv := reflect.ValueOf(arg)
			if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
				return nil, argumentTypeError(arg)
			}
			keys := rv.MapKeys()
			sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
			for _, k := range keys {
				attrs = attrs.with(k.String(), rv.MapIndex(k).Interface())
			}
		}
	}

	return newElement(parseDescriptor(desc), attrs, content), nil
}

// Element builds an element from explicit attributes and content. Content
// values are checked when rendered.
func Element(desc string, attrs Attrs, content ...any) *Deferred {
	var merged Attrs
	for _, a := range attrs {
		merged = merged.with(a.Name, a.Value)
	}
	return newElement(parseDescriptor(desc), merged, append([]any(nil), content...))
}

func newElement(d descriptor, attrs Attrs, content []any) *Deferred {
	if d.id != "" {
		attrs = Attrs{{Name: "id", Value: d.id}}.merge(attrs)
	}
	if len(d.classes) > 0 && !attrs.Has("class") {
		attrs = attrs.with("class", "")
	}

	tag := d.tag
	fixed := strings.Join(d.classes, " ")

	return &Deferred{
		kind: "element",
		fn: func(s *Scope, buf *Buffer, escaped bool) error {
			rendered, err := renderAttributes(attrs, fixed, s, escaped)
			if err != nil {
				return err
			}

			buf.WriteString("<" + tag)
			if rendered != "" {
				buf.WriteString(" " + rendered)
			}
			buf.WriteString(">")

			if err := renderAll(content, s, buf, escaped); err != nil {
				return err
			}

			buf.WriteString("</" + tag + ">")
			return nil
		},
	}
}
