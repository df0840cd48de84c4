package tree

import (
	"io"

	"github.com/vango-dev/htmlfn/pkg/markup"
)

// Template is a decoded template document.
type Template struct {
	// Name identifies the template inside a Set.
	Name string

	// Title is used as the page title when the template is wrapped in a
	// full document.
	Title string

	// Description is free text shown by listings.
	Description string

	// Context is the sample context stored with the document. It is used
	// when no other context is supplied.
	Context any

	// Source is the file the template was read from, if any.
	Source string

	root *markup.Deferred
}

// Root returns the template body as a single node.
func (t *Template) Root() *markup.Deferred {
	return t.root
}

// Render renders the template against ctx. A nil ctx falls back to the
// template's own sample context.
func (t *Template) Render(ctx any) (string, error) {
	return t.root.Render(t.contextOr(ctx))
}

// RenderTo renders the template against ctx and writes it to w.
func (t *Template) RenderTo(w io.Writer, ctx any) error {
	return t.root.RenderTo(w, t.contextOr(ctx))
}

func (t *Template) contextOr(ctx any) any {
	if ctx == nil {
		return t.Context
	}
	return ctx
}
