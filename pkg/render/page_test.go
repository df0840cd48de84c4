package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRenderPage(t *testing.T) {
	r, _ := newTestRenderer(t)

	var buf bytes.Buffer
	err := r.RenderPage(context.Background(), &buf, "hello", nil, PageData{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()

	if !strings.HasPrefix(html, "<!DOCTYPE html>\n") {
		t.Errorf("should start with DOCTYPE, got %q", html)
	}
	if !strings.Contains(html, `<html lang="en">`) {
		t.Errorf("should contain html tag with lang, got %q", html)
	}
	if !strings.Contains(html, `<meta charset="utf-8">`) {
		t.Errorf("should contain charset, got %q", html)
	}
	if !strings.Contains(html, "<title>Greeting</title>") {
		t.Errorf("should default the title to the template title, got %q", html)
	}
	if !strings.Contains(html, "<body>\n<h1>Hello, sample</h1>\n</body>\n</html>\n") {
		t.Errorf("should contain body content, got %q", html)
	}
}

func TestRenderPageHead(t *testing.T) {
	r := NewRenderer(testSet(t, testDocs), RendererConfig{
		Lang:        "fr",
		StyleSheets: []string{"/base.css"},
	})

	page := PageData{
		Title: `A "quoted" <title>`,
		Meta: []MetaTag{
			{Name: "description", Content: "Test & more"},
			{Property: "og:title", Content: "OG"},
		},
		Links: []LinkTag{
			{Rel: "icon", Href: "/favicon.ico", Type: "image/x-icon"},
		},
		StyleSheets: []string{"/page.css"},
		Styles:      []string{"body{margin:0}"},
		Scripts: []ScriptTag{
			{Src: "/early.js", Defer: true},
			{Src: "/mod.js", Module: true},
			{Inline: "console.log(1)"},
		},
	}

	var buf bytes.Buffer
	if err := r.RenderPage(context.Background(), &buf, "list", map[string]any{"items": []any{"x"}}, page); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := buf.String()

	want := []string{
		`<html lang="fr">`,
		`<title>A &quot;quoted&quot; &lt;title&gt;</title>`,
		`<meta name="description" content="Test &amp; more">`,
		`<meta property="og:title" content="OG">`,
		`<link rel="icon" href="/favicon.ico" type="image/x-icon">`,
		`<link rel="stylesheet" href="/base.css">`,
		`<link rel="stylesheet" href="/page.css">`,
		`<style>body{margin:0}</style>`,
		`<script src="/early.js" defer></script>`,
		`<ul><li>x</li></ul>`,
		`<script src="/mod.js" type="module"></script>`,
		`<script>console.log(1)</script>`,
	}
	for _, w := range want {
		if !strings.Contains(html, w) {
			t.Errorf("missing %q in %q", w, html)
		}
	}

	head := html[:strings.Index(html, "</head>")]
	if strings.Contains(head, "/mod.js") {
		t.Errorf("blocking scripts belong at the end of the body, got %q", head)
	}
	if strings.Index(html, "/base.css") > strings.Index(html, "/page.css") {
		t.Errorf("configured stylesheets should come first")
	}
}

func TestRenderPageFailureWritesNothing(t *testing.T) {
	r, _ := newTestRenderer(t)

	var buf bytes.Buffer
	if err := r.RenderPage(context.Background(), &buf, "broken", map[string]any{"obj": []any{map[string]any{}}}, PageData{}); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("got %q", buf.String())
	}

	if err := r.RenderPage(context.Background(), &buf, "missing", nil, PageData{}); err == nil {
		t.Fatal("expected error for missing template")
	}
}
