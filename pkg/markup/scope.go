package markup

import "maps"

// scopeKind distinguishes how a scope resolves names.
type scopeKind uint8

const (
	scopeTop    scopeKind = iota // caller-supplied context
	scopeEach                    // one iteration of Each
	scopeWithin                  // value shifted in by Within
)

// Scope is the read-only context a render pass evaluates against.
//
// A Scope is never modified once created. Each and Within derive child
// scopes that point back at their parent and at the root scope; the root
// is fixed when the first child is derived and shared by every descendant.
type Scope struct {
	kind   scopeKind
	data   any
	entry  any
	index  int
	parent *Scope
	root   *Scope
}

// NewScope wraps data as a top-level scope. A *Scope is returned as is.
func NewScope(data any) *Scope {
	if s, ok := data.(*Scope); ok && s != nil {
		return s
	}
	return &Scope{kind: scopeTop, data: data}
}

// Data returns the value this scope wraps. It is nil for Each scopes.
func (s *Scope) Data() any { return s.data }

// Entry returns the current element inside Each.
func (s *Scope) Entry() any { return s.entry }

// Index returns the current position inside Each.
func (s *Scope) Index() int { return s.index }

// Parent returns the enclosing scope, or nil at the top level.
func (s *Scope) Parent() *Scope { return s.parent }

// Root returns the outermost scope of the chain.
func (s *Scope) Root() *Scope {
	if s.root != nil {
		return s.root
	}
	return s
}

// Get resolves a dotted path against the scope. See Path.
func (s *Scope) Get(path string) any {
	return Path(path)(s)
}

// Lookup resolves a single name.
//
// Each scopes expose entry, index, parent and $root. Within scopes expose
// $root, $parent and the fields of the shifted value. Top-level scopes
// expose the fields of the context value.
func (s *Scope) Lookup(name string) (any, bool) {
	switch s.kind {
	case scopeEach:
		switch name {
		case "entry":
			return s.entry, true
		case "index":
			return s.index, true
		case "parent":
			return s.parent, true
		case "$root":
			return s.root, true
		}
		return nil, false
	case scopeWithin:
		switch name {
		case "$root":
			return s.root, true
		case "$parent":
			return s.parent, true
		}
	}
	return field(s.data, name)
}

func (s *Scope) iterate(entry any, index int) *Scope {
	return &Scope{
		kind:   scopeEach,
		entry:  entry,
		index:  index,
		parent: s,
		root:   s.Root(),
	}
}

func (s *Scope) shift(data any) *Scope {
	return &Scope{
		kind:   scopeWithin,
		data:   shallowCopy(data),
		parent: s,
		root:   s.Root(),
	}
}

// shallowCopy detaches the top level of generic maps so the shifted scope
// does not observe later writes by the caller.
func shallowCopy(data any) any {
	switch m := data.(type) {
	case map[string]any:
		return maps.Clone(m)
	case map[string]string:
		return maps.Clone(m)
	}
	return data
}
