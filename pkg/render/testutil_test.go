package render

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/htmlfn/pkg/tree"
)

// testSet parses documents keyed by template name.
func testSet(t *testing.T, docs map[string]string) *tree.Set {
	t.Helper()

	var templates []*tree.Template
	for name, doc := range docs {
		tmpl, err := tree.Parse(name, []byte(doc))
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		templates = append(templates, tmpl)
	}

	set, err := tree.NewSet(templates...)
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	return set
}

var testDocs = map[string]string{
	"hello": `
title: Greeting
context: {who: sample}
body: {tag: h1, children: ["Hello, ", {path: who}]}`,
	"list": `
body:
  tag: ul
  children:
    each: items
    do: {tag: li, children: {path: entry}}`,
	"broken": `body: {path: obj}`,
}

func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	opts = append([]Option{WithMetrics(NewMetrics(WithRegistry(reg)))}, opts...)
	return NewRenderer(testSet(t, testDocs), RendererConfig{}, opts...), reg
}
