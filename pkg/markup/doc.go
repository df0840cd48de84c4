// Package markup is a functional, composable HTML string renderer.
//
// A page is described as a tree of small renderable values (elements,
// text, deferred functions, collections, conditionals) and materialized
// lazily against a context value. The same tree can be rendered any number
// of times, concurrently, against different contexts.
//
// # Basic Usage
//
//	page := markup.H("ul#users.list",
//	    markup.Each("users",
//	        markup.H("li", markup.Attr{Name: "title", Value: markup.Path("entry.email")},
//	            markup.Path("entry.name"),
//	        ),
//	    ),
//	)
//
//	html, err := page.Render(map[string]any{
//	    "users": []map[string]any{{"name": "Ann", "email": "ann@example.com"}},
//	})
//	// <ul id="users" class="list"><li title="ann@example.com">Ann</li></ul>
//
// # Tag Descriptors
//
// The first argument of H is a descriptor of the form tag#id.class1.class2.
// Explicit id attributes replace the descriptor id; explicit class values
// are appended after the descriptor classes.
//
// # Renderable Values
//
// Content is flattened by one recursive protocol:
//
//   - nil, false, true and "" produce nothing
//   - strings are HTML-escaped (unless inside Safe)
//   - integers and floats are written in canonical decimal form
//   - time.Time values are written as UTC timestamps with milliseconds
//   - Func values are called with the current *Scope and their result is
//     rendered in turn
//   - slices and arrays render each element in order
//   - anything else fails with ErrRenderType
//
// # Scopes
//
// Each and Within derive new scopes. Inside Each, paths resolve against
// entry, index, parent and $root; inside Within, against the fields of the
// shifted value plus $parent and $root. $root always refers to the
// outermost context no matter how deeply scopes nest.
//
// # Escaping
//
// All text and attribute values are escaped by default. Safe disables
// escaping for everything below it, including elements built elsewhere.
// Only pass trusted content to Safe.
package markup
