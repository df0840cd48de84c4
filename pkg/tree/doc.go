// Package tree loads declarative template documents and turns them into
// markup nodes.
//
// A document is YAML (or JSON, which YAML accepts):
//
//	name: users
//	title: Users
//	context:
//	  users: [{name: Ada, admin: true}]
//	body:
//	  - tag: ul#users.list
//	    children:
//	      - each: users
//	        do:
//	          - tag: li
//	            class: {admin: entry.admin}
//	            children:
//	              - path: entry.name
//
// Node forms:
//
//	"text", 12, 1.5      literal content (strings are escaped)
//	[a, b]               a list of nodes
//	tag                  element with optional attrs, class and children
//	path                 value at a dotted path
//	safe                 content rendered without escaping
//	raw                  a literal string rendered without escaping
//	group                content rendered in sequence
//	each + do            content repeated per element of a collection
//	within + do          content rendered in a shifted scope
//	if + then [+ else]   conditional content; if is a path, a {path} or a {match}
//
// Attribute values are literals, {path: ...} references, or mappings and
// sequences written as JSON. Mapping order is kept, so attributes render
// in document order.
package tree
