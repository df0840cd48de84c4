// Package render renders named templates from a tree.Set to strings,
// writers and full HTML pages.
//
// # Basic Usage
//
// To render a template to a string:
//
//	set, err := tree.Load("templates")
//	renderer := render.NewRenderer(set, render.RendererConfig{})
//	html, err := renderer.RenderToString(ctx, "index", data)
//
// To stream HTML to a writer:
//
//	err := renderer.RenderToWriter(ctx, w, "index", data)
//
// A nil data value falls back to RendererConfig.DefaultContext and then to
// the sample context stored in the template document.
//
// # Full Page Rendering
//
// To render a complete HTML document around a template:
//
//	page := render.PageData{
//	    Title:       "My Page",
//	    StyleSheets: []string{"/app.css"},
//	}
//	err := renderer.RenderPage(ctx, w, "index", data, page)
//
// # Streaming
//
// StreamingRenderer flushes the head before rendering the body:
//
//	sr := render.NewStreamingRenderer(w, renderer)
//	err := sr.RenderPage(ctx, "index", data, page)
//
// # Observability
//
// Every render is counted in Prometheus metrics (see NewMetrics) and
// wrapped in an OpenTelemetry span named "render <template>".
package render
