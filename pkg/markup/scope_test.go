package markup

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeTopLevel(t *testing.T) {
	data := map[string]any{"a": 1}
	s := NewScope(data)

	assert.Equal(t, data, s.Data())
	assert.Nil(t, s.Parent())
	assert.Same(t, s, s.Root())
	assert.Same(t, s, NewScope(s))

	v, ok := s.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = s.Lookup("$root")
	assert.False(t, ok)
}

func TestScopeIterate(t *testing.T) {
	top := NewScope(map[string]any{"x": "X"})
	child := top.iterate("e", 3)
	grandchild := child.iterate("f", 0)

	assert.Equal(t, "e", child.Entry())
	assert.Equal(t, 3, child.Index())
	assert.Same(t, top, child.Parent())
	assert.Same(t, top, child.Root())
	assert.Same(t, child, grandchild.Parent())
	assert.Same(t, top, grandchild.Root())

	for name, want := range map[string]any{"entry": "f", "index": 0} {
		got, ok := grandchild.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got)
	}
	parent, _ := grandchild.Lookup("parent")
	assert.Same(t, child, parent)
	root, _ := grandchild.Lookup("$root")
	assert.Same(t, top, root)

	_, ok := grandchild.Lookup("x")
	assert.False(t, ok)
}

func TestScopeShift(t *testing.T) {
	top := NewScope(map[string]any{"x": "X"})
	shifted := top.shift(map[string]any{"y": "Y"})
	deeper := shifted.shift(map[string]any{"z": "Z"})

	y, ok := shifted.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, "Y", y)

	p, _ := deeper.Lookup("$parent")
	assert.Same(t, shifted, p)
	r, _ := deeper.Lookup("$root")
	assert.Same(t, top, r)
	assert.Equal(t, "X", deeper.Get("$root.x"))
	assert.Equal(t, "Y", deeper.Get("$parent.y"))
}

func TestPath(t *testing.T) {
	type inner struct {
		Value string `json:"val"`
		List  []int
		ptr   string
	}
	type outer struct {
		Inner *inner
		Tags  map[string]string
	}
	type key string

	ctx := map[string]any{
		"s":      outer{Inner: &inner{Value: "v", List: []int{4, 5}, ptr: "hidden"}, Tags: map[string]string{"k": "t"}},
		"named":  map[key]int{"n": 9},
		"nested": map[string]any{"a": map[string]any{"b": "c"}},
		"nilPtr": (*inner)(nil),
	}
	s := NewScope(ctx)

	tests := []struct {
		path string
		want any
	}{
		{path: "s.Inner.val", want: "v"},
		{path: "s.Inner.Value", want: "v"},
		{path: "s.inner.value", want: "v"},
		{path: "s.Inner.List.1", want: 5},
		{path: "s.Inner.List.9", want: nil},
		{path: "s.Inner.List.x", want: nil},
		{path: "s.Inner.ptr", want: nil},
		{path: "s.Tags.k", want: "t"},
		{path: "named.n", want: 9},
		{path: "nested.a.b", want: "c"},
		{path: "nested.a.b.c", want: nil},
		{path: "nilPtr.Value", want: nil},
		{path: "missing.deep", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Path(tt.path)(s))
		})
	}
}

func TestPathEmptyReturnsScope(t *testing.T) {
	s := NewScope(1)
	assert.Same(t, s, Path("")(s))
}

func TestTruthy(t *testing.T) {
	var nilMap map[string]any
	var nilSlice []int
	var nilFunc Func

	falsy := []any{nil, false, "", Text(""), 0, 0.0, math.NaN(), uint8(0), Int(0), nilMap, nilSlice, nilFunc, (*int)(nil)}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}

	truthy := []any{true, "a", 1, -1, 0.1, []int{}, map[string]any{}, struct{}{}, Int(2), H("div"), NewScope(nil)}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
}

func TestMatch(t *testing.T) {
	s := NewScope(map[string]any{
		"user":  map[string]any{"role": "admin", "age": 30, "meta": map[string]any{"vip": true}},
		"limit": 40,
	})

	tests := []struct {
		name string
		m    Match
		want bool
	}{
		{name: "empty", m: Match{}, want: true},
		{name: "equal", m: Match{"user.role": "admin"}, want: true},
		{name: "not equal", m: Match{"user.role": "user"}, want: false},
		{name: "numeric kinds", m: Match{"user.age": int64(30)}, want: true},
		{name: "number vs string", m: Match{"user.age": "30"}, want: false},
		{name: "nested match", m: Match{"user": Match{"meta.vip": true}}, want: true},
		{name: "nested map", m: Match{"user": map[string]any{"role": "admin"}}, want: true},
		{name: "predicate", m: Match{"user.age": func(v any) bool { return v.(int) > 18 }}, want: true},
		{name: "func comparison", m: Match{"limit": Func(func(s *Scope) any { return 40.0 })}, want: true},
		{name: "missing", m: Match{"nope": nil}, want: true},
		{name: "all must hold", m: Match{"user.role": "admin", "limit": 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.Func()(s))
		})
	}
}
