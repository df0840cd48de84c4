package tree

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/pkg/markup"
)

// forms lists every node form with the keys it accepts next to its own.
var forms = map[string][]string{
	"tag":    {"attrs", "class", "children"},
	"path":   nil,
	"safe":   nil,
	"raw":    nil,
	"group":  nil,
	"each":   {"do"},
	"within": {"do"},
	"if":     {"then", "else"},
}

// documentKeys are the keys allowed at the top of a document.
var documentKeys = []string{"name", "title", "description", "context", "body"}

// ParseFile reads and decodes a template document. The template name
// defaults to the file name without its extension.
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, herrors.New("H010").WithDetail(err.Error()).Wrap(err)
	}
	t, err := parse(path, data)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	t.Source = path
	return t, nil
}

// Parse decodes a template document held in memory. source names the
// document in error messages.
func Parse(source string, data []byte) (*Template, error) {
	t, err := parse(source, data)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = source
	}
	return t, nil
}

func parse(source string, data []byte) (*Template, error) {
	d := &decoder{file: source, lines: strings.Split(string(data), "\n")}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		e := herrors.New("H010").Wrap(err)
		var line int
		if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
			return nil, d.locate(e, line, 0)
		}
		e.Location = &herrors.Location{File: source}
		return nil, e
	}
	if len(doc.Content) == 0 || len(bytes.TrimSpace(data)) == 0 {
		return nil, herrors.New("H010").WithDetail("The document is empty.")
	}

	return d.document(doc.Content[0])
}

type decoder struct {
	file  string
	lines []string
}

type pair struct {
	key   *yaml.Node
	value *yaml.Node
}

func (d *decoder) document(n *yaml.Node) (*Template, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.fail(n, "H010").WithDetail("A template document must be a mapping with a body.")
	}

	pairs, err := d.pairs(n)
	if err != nil {
		return nil, err
	}

	t := &Template{}
	var body *yaml.Node
	for _, p := range pairs {
		switch p.key.Value {
		case "name":
			t.Name, err = d.str(p)
		case "title":
			t.Title, err = d.str(p)
		case "description":
			t.Description, err = d.str(p)
		case "context":
			err = p.value.Decode(&t.Context)
			if err != nil {
				err = d.fail(p.value, "H012", "context").Wrap(err)
			}
		case "body":
			body = p.value
		default:
			err = d.fail(p.key, "H011", p.key.Value).
				WithSuggestion("Top-level keys are " + strings.Join(documentKeys, ", ") + ".")
		}
		if err != nil {
			return nil, err
		}
	}
	if body == nil {
		return nil, d.fail(n, "H012", "body").WithDetail("The document has no body.")
	}

	content, err := d.content(body)
	if err != nil {
		return nil, err
	}
	t.root = markup.Group(content...)
	return t, nil
}

// node decodes a single template node.
func (d *decoder) node(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return d.node(n.Alias)
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.SequenceNode:
		items, err := d.content(n)
		if err != nil {
			return nil, err
		}
		return markup.List(items), nil
	case yaml.MappingNode:
		return d.form(n)
	}
	return nil, d.fail(n, "H010")
}

// content decodes a node or a sequence of nodes into a content list.
func (d *decoder) content(n *yaml.Node) ([]any, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.SequenceNode {
		v, err := d.node(n)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}

	items := make([]any, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := d.node(c)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func (d *decoder) form(n *yaml.Node) (any, error) {
	pairs, err := d.pairs(n)
	if err != nil {
		return nil, err
	}

	var kind *pair
	for i := range pairs {
		if _, ok := forms[pairs[i].key.Value]; !ok {
			continue
		}
		if kind != nil {
			return nil, d.fail(pairs[i].key, "H011", pairs[i].key.Value).
				WithSuggestion(fmt.Sprintf("A node already has the form %q; split it into two nodes.", kind.key.Value))
		}
		kind = &pairs[i]
	}
	if kind == nil {
		if len(pairs) == 0 {
			return nil, d.fail(n, "H011", "{}")
		}
		return nil, d.fail(pairs[0].key, "H011", pairs[0].key.Value)
	}

	extra := make(map[string]*yaml.Node)
	allowed := forms[kind.key.Value]
	for _, p := range pairs {
		if p.key == kind.key {
			continue
		}
		if !slices.Contains(allowed, p.key.Value) {
			return nil, d.fail(p.key, "H011", p.key.Value).
				WithSuggestion(fmt.Sprintf("%q accepts %s.", kind.key.Value, describe(allowed)))
		}
		extra[p.key.Value] = p.value
	}

	switch kind.key.Value {
	case "tag":
		return d.element(*kind, extra)
	case "path":
		s, err := d.str(*kind)
		if err != nil {
			return nil, err
		}
		return markup.Path(s), nil
	case "raw":
		s, err := d.str(*kind)
		if err != nil {
			return nil, err
		}
		return markup.Safe(s), nil
	case "safe", "group":
		content, err := d.content(kind.value)
		if err != nil {
			return nil, err
		}
		if kind.key.Value == "safe" {
			return markup.Safe(content...), nil
		}
		return markup.Group(content...), nil
	case "each", "within":
		src, err := d.source(*kind)
		if err != nil {
			return nil, err
		}
		var body []any
		if n, ok := extra["do"]; ok {
			if body, err = d.content(n); err != nil {
				return nil, err
			}
		}
		if kind.key.Value == "each" {
			return markup.Each(src, body...), nil
		}
		return markup.Within(src, body...), nil
	case "if":
		return d.conditional(*kind, extra)
	}
	return nil, d.fail(kind.key, "H011", kind.key.Value)
}

func (d *decoder) element(tag pair, extra map[string]*yaml.Node) (any, error) {
	desc, err := d.str(tag)
	if err != nil {
		return nil, err
	}

	var attrs markup.Attrs
	if n, ok := extra["attrs"]; ok {
		if attrs, err = d.attrs(n); err != nil {
			return nil, err
		}
	}
	if n, ok := extra["class"]; ok {
		classes, err := d.classes(n)
		if err != nil {
			return nil, err
		}
		attrs = attrs.Set("class", classes)
	}

	var children []any
	if n, ok := extra["children"]; ok {
		if children, err = d.content(n); err != nil {
			return nil, err
		}
	}
	return markup.Element(desc, attrs, children...), nil
}

func (d *decoder) attrs(n *yaml.Node) (markup.Attrs, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.fail(n, "H012", "attrs").WithDetail("attrs must be a mapping of names to values.")
	}
	pairs, err := d.pairs(n)
	if err != nil {
		return nil, err
	}

	attrs := make(markup.Attrs, 0, len(pairs))
	for _, p := range pairs {
		v, err := d.value(p.value)
		if err != nil {
			return nil, err
		}
		attrs = attrs.Set(p.key.Value, v)
	}
	return attrs, nil
}

// value decodes an attribute or match value: a {path} reference or a
// literal.
func (d *decoder) value(n *yaml.Node) (any, error) {
	if p, ok := d.pathRef(n); ok {
		return p, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, d.fail(n, "H012", n.Value).Wrap(err)
	}
	return v, nil
}

// pathRef recognizes the {path: "a.b"} reference form.
func (d *decoder) pathRef(n *yaml.Node) (markup.Func, bool) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, false
	}
	k, v := n.Content[0], n.Content[1]
	if k.Value != "path" || v.Kind != yaml.ScalarNode {
		return nil, false
	}
	return markup.Path(v.Value), true
}

func (d *decoder) classes(n *yaml.Node) (markup.Classes, error) {
	var out markup.Classes
	switch n.Kind {
	case yaml.ScalarNode:
		for _, name := range strings.Fields(n.Value) {
			out = append(out, markup.ClassToggle{Name: name, On: true})
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			more, err := d.classes(c)
			if err != nil {
				return nil, err
			}
			out = append(out, more...)
		}
	case yaml.MappingNode:
		pairs, err := d.pairs(n)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			on, err := d.toggle(p.value)
			if err != nil {
				return nil, err
			}
			out = append(out, markup.ClassToggle{Name: p.key.Value, On: on})
		}
	default:
		return nil, d.fail(n, "H012", "class")
	}
	return out, nil
}

// toggle decodes a class condition: a boolean, a path string or a {path}.
func (d *decoder) toggle(n *yaml.Node) (any, error) {
	if p, ok := d.pathRef(n); ok {
		return p, nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, d.fail(n, "H012", "class")
	}
	if n.Tag == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, d.fail(n, "H012", "class").Wrap(err)
		}
		return b, nil
	}
	return markup.Path(n.Value), nil
}

// source decodes the collection of each or the value of within: a path
// string, a {path} reference, or a literal sequence or mapping.
func (d *decoder) source(p pair) (any, error) {
	n := p.value
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		return n.Value, nil
	}
	if f, ok := d.pathRef(n); ok {
		return f, nil
	}
	if n.Kind == yaml.SequenceNode || n.Kind == yaml.MappingNode {
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, d.fail(n, "H012", p.key.Value).Wrap(err)
		}
		return v, nil
	}
	return nil, d.fail(n, "H012", p.key.Value).
		WithDetail(fmt.Sprintf("%s takes a path, a {path: ...} reference or a literal value.", p.key.Value))
}

func (d *decoder) conditional(cond pair, extra map[string]*yaml.Node) (any, error) {
	var test any
	n := cond.value
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag == "!!str":
		test = n.Value
	case n.Kind == yaml.ScalarNode:
		if err := n.Decode(&test); err != nil {
			return nil, d.fail(n, "H012", "if").Wrap(err)
		}
	case n.Kind == yaml.MappingNode:
		if f, ok := d.pathRef(n); ok {
			test = f
			break
		}
		if len(n.Content) != 2 || n.Content[0].Value != "match" {
			return nil, d.fail(n, "H012", "if").
				WithSuggestion("Use a path, {path: ...} or {match: {...}}.")
		}
		m, err := d.match(n.Content[1])
		if err != nil {
			return nil, err
		}
		test = m
	default:
		return nil, d.fail(n, "H012", "if")
	}

	var ifTrue, ifFalse []any
	var err error
	if t, ok := extra["then"]; ok {
		if ifTrue, err = d.content(t); err != nil {
			return nil, err
		}
	}
	if e, ok := extra["else"]; ok {
		if ifFalse, err = d.content(e); err != nil {
			return nil, err
		}
	}
	return markup.If(test, markup.List(ifTrue), ifFalse...), nil
}

func (d *decoder) match(n *yaml.Node) (markup.Match, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.fail(n, "H012", "match").WithDetail("match must be a mapping of paths to expected values.")
	}
	pairs, err := d.pairs(n)
	if err != nil {
		return nil, err
	}

	m := make(markup.Match, len(pairs))
	for _, p := range pairs {
		if _, ok := d.pathRef(p.value); !ok && p.value.Kind == yaml.MappingNode {
			nested, err := d.match(p.value)
			if err != nil {
				return nil, err
			}
			m[p.key.Value] = nested
			continue
		}
		v, err := d.value(p.value)
		if err != nil {
			return nil, err
		}
		m[p.key.Value] = v
	}
	return m, nil
}

func (d *decoder) scalar(n *yaml.Node) (any, error) {
	if n.Tag == "!!str" {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, d.fail(n, "H012", n.Value).Wrap(err)
	}
	return v, nil
}

func (d *decoder) str(p pair) (string, error) {
	if p.value.Kind != yaml.ScalarNode {
		return "", d.fail(p.value, "H012", p.key.Value).
			WithDetail(fmt.Sprintf("%s must be a string.", p.key.Value))
	}
	return p.value.Value, nil
}

func (d *decoder) pairs(n *yaml.Node) ([]pair, error) {
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if k.Kind != yaml.ScalarNode {
			return nil, d.fail(k, "H010").WithDetail("Mapping keys must be strings.")
		}
		out = append(out, pair{key: k, value: n.Content[i+1]})
	}
	return out, nil
}

// fail builds a coded error positioned at n.
func (d *decoder) fail(n *yaml.Node, code string, args ...any) *herrors.Error {
	return d.locate(herrors.New(code, args...), n.Line, n.Column)
}

func (d *decoder) locate(e *herrors.Error, line, column int) *herrors.Error {
	e.Location = &herrors.Location{File: d.file, Line: line, Column: column}
	if line <= 0 || line > len(d.lines) {
		return e
	}
	start := max(line-2, 1)
	end := min(line+2, len(d.lines))
	e.Context = d.lines[start-1 : end]
	e.ContextStart = start
	return e
}

func describe(keys []string) string {
	if len(keys) == 0 {
		return "no other keys"
	}
	return strings.Join(keys, ", ")
}
