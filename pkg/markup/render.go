package markup

import (
	"io"
	"strings"
)

// Buffer collects the fragments produced by one render pass. It is created
// by the top-level call and shared by pointer with every nested call.
type Buffer struct {
	parts []string
	size  int
}

// WriteString appends a fragment. Empty fragments are dropped.
func (b *Buffer) WriteString(s string) {
	if s == "" {
		return
	}
	b.parts = append(b.parts, s)
	b.size += len(s)
}

// Fragments returns the number of fragments written so far.
func (b *Buffer) Fragments() int { return len(b.parts) }

// Len returns the total byte length of the output.
func (b *Buffer) Len() int { return b.size }

// String joins the fragments.
func (b *Buffer) String() string {
	var sb strings.Builder
	sb.Grow(b.size)
	for _, p := range b.parts {
		sb.WriteString(p)
	}
	return sb.String()
}

// WriteTo writes the fragments to w in order.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, p := range b.parts {
		m, err := io.WriteString(w, p)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Reset empties the buffer for reuse.
func (b *Buffer) Reset() {
	b.parts = b.parts[:0]
	b.size = 0
}

// renderFunc writes a node's output for one scope.
type renderFunc func(s *Scope, buf *Buffer, escaped bool) error

// Deferred is a renderable built by H, Element or a combinator. It is
// immutable and may be rendered any number of times, concurrently.
type Deferred struct {
	kind string
	fn   renderFunc
}

// Kind names the constructor that built d ("element", "each", ...).
func (d *Deferred) Kind() string {
	if d == nil {
		return ""
	}
	return d.kind
}

func (d *Deferred) renderTo(s *Scope, buf *Buffer, escaped bool) error {
	if d == nil || d.fn == nil {
		return nil
	}
	return d.fn(s, buf, escaped)
}

// Render evaluates d against ctx with a fresh buffer and returns the
// joined output. ctx may be any value, or a *Scope.
func (d *Deferred) Render(ctx any) (string, error) {
	return Render(d, ctx)
}

// MustRender is like Render but panics on error.
func (d *Deferred) MustRender(ctx any) string {
	out, err := d.Render(ctx)
	if err != nil {
		panic(err)
	}
	return out
}

// RenderTo evaluates d against ctx and writes the output to w. Nothing is
// written if rendering fails.
func (d *Deferred) RenderTo(w io.Writer, ctx any) error {
	var buf Buffer
	if err := d.renderTo(NewScope(ctx), &buf, false); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Render evaluates any renderable value against ctx at the top level.
func Render(v any, ctx any) (string, error) {
	var buf Buffer
	if err := RenderValue(v, NewScope(ctx), &buf, false); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderValue appends the output of v to buf. It is the single dispatch
// point of the render protocol: escaped is passed down unchanged to every
// nested value.
func RenderValue(v any, s *Scope, buf *Buffer, escaped bool) error {
	n, err := NodeOf(v)
	if err != nil {
		return err
	}
	return n.renderTo(s, buf, escaped)
}

func renderAll(content []any, s *Scope, buf *Buffer, escaped bool) error {
	for _, v := range content {
		if err := RenderValue(v, s, buf, escaped); err != nil {
			return err
		}
	}
	return nil
}
