package render

import (
	"context"
	"fmt"
	"io"

	"github.com/vango-dev/htmlfn/pkg/markup"
)

// PageData describes the document wrapped around a rendered template.
type PageData struct {
	// Title is the page title. Defaults to the template title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to RendererConfig.Lang.
	Lang string

	// Meta contains meta tags for the page
	Meta []MetaTag

	// Links contains link tags (favicon, preload, etc.)
	Links []LinkTag

	// Scripts contains script tags to include
	Scripts []ScriptTag

	// Styles contains inline CSS styles
	Styles []string

	// StyleSheets contains paths to external stylesheets, added after
	// RendererConfig.StyleSheets.
	StyleSheets []string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name      string // name attribute
	Content   string // content attribute
	Property  string // property attribute (for OpenGraph)
	HTTPEquiv string // http-equiv attribute
	Charset   string // charset attribute
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel         string // rel attribute
	Href        string // href attribute
	Type        string // type attribute
	Sizes       string // sizes attribute
	CrossOrigin string // crossorigin attribute
	Media       string // media attribute
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Type   string // type attribute
	Defer  bool   // defer attribute
	Async  bool   // async attribute
	Module bool   // type="module"
	Inline string // inline script content
}

// RenderPage renders the named template as the body of a complete HTML
// document. The body is rendered first so nothing is written on failure.
func (r *Renderer) RenderPage(ctx context.Context, w io.Writer, name string, data any, page PageData) error {
	t, err := r.Set().Get(name)
	if err != nil {
		return err
	}
	body, err := r.render(ctx, name, data)
	if err != nil {
		return err
	}
	if page.Title == "" {
		page.Title = titleOf(t)
	}

	if err := r.renderOpen(w, page); err != nil {
		return err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	return r.renderClose(w, page)
}

// renderOpen writes everything up to and including the opening body tag.
func (r *Renderer) renderOpen(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = r.config.Lang
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, `<html lang="%s">`+"\n", markup.Escape(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	_, err := io.WriteString(w, "<body>\n")
	return err
}

// renderClose writes body scripts and the closing tags.
func (r *Renderer) renderClose(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	for _, script := range page.Scripts {
		if !script.Defer && !script.Async {
			if err := renderScriptTag(w, script); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n"); err != nil {
		return err
	}

	if _, err := io.WriteString(w, `  <meta charset="utf-8">`+"\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}

	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", markup.Escape(page.Title)); err != nil {
			return err
		}
	}

	for _, meta := range page.Meta {
		if err := renderTag(w, "meta", [][2]string{
			{"charset", meta.Charset},
			{"name", meta.Name},
			{"property", meta.Property},
			{"http-equiv", meta.HTTPEquiv},
			{"content", meta.Content},
		}); err != nil {
			return err
		}
	}

	for _, link := range page.Links {
		if err := renderTag(w, "link", [][2]string{
			{"rel", link.Rel},
			{"href", link.Href},
			{"type", link.Type},
			{"sizes", link.Sizes},
			{"crossorigin", link.CrossOrigin},
			{"media", link.Media},
		}); err != nil {
			return err
		}
	}

	sheets := append(append([]string(nil), r.config.StyleSheets...), page.StyleSheets...)
	for _, href := range sheets {
		if _, err := fmt.Fprintf(w, `  <link rel="stylesheet" href="%s">`+"\n", markup.Escape(href)); err != nil {
			return err
		}
	}

	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}

	// Deferred and async scripts go in the head; the rest close the body.
	for _, script := range page.Scripts {
		if script.Defer || script.Async {
			if err := renderScriptTag(w, script); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "</head>\n")
	return err
}

// renderTag writes a void head element with its non-empty attributes.
func renderTag(w io.Writer, tag string, attrs [][2]string) error {
	if _, err := io.WriteString(w, "  <"+tag); err != nil {
		return err
	}
	for _, a := range attrs {
		if a[1] == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a[0], markup.Escape(a[1])); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">\n")
	return err
}

// renderScriptTag renders a script element.
func renderScriptTag(w io.Writer, script ScriptTag) error {
	if _, err := io.WriteString(w, "  <script"); err != nil {
		return err
	}

	if script.Src != "" {
		if _, err := fmt.Fprintf(w, ` src="%s"`, markup.Escape(script.Src)); err != nil {
			return err
		}
	}

	if script.Module {
		if _, err := io.WriteString(w, ` type="module"`); err != nil {
			return err
		}
	} else if script.Type != "" {
		if _, err := fmt.Fprintf(w, ` type="%s"`, markup.Escape(script.Type)); err != nil {
			return err
		}
	}

	if script.Defer {
		if _, err := io.WriteString(w, " defer"); err != nil {
			return err
		}
	}
	if script.Async {
		if _, err := io.WriteString(w, " async"); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ">%s</script>\n", script.Inline); err != nil {
		return err
	}
	return nil
}
