package render

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/pkg/markup"
	"github.com/vango-dev/htmlfn/pkg/tree"
)

// Default tracer name for render spans.
const defaultTracerName = "htmlfn"

// RendererConfig configures the template renderer.
type RendererConfig struct {
	// DefaultContext is used when a render is called with nil data.
	DefaultContext any

	// Lang is the default language attribute for full pages.
	// Defaults to "en" if not specified.
	Lang string

	// StyleSheets are stylesheet links added to every full page.
	StyleSheets []string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMetrics records every render in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for render spans. The global tracer
// provider is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) {
		r.tracer = t
	}
}

// Renderer renders templates from a set by name. It is safe for
// concurrent use.
type Renderer struct {
	set     atomic.Pointer[tree.Set]
	config  RendererConfig
	metrics *Metrics
	tracer  trace.Tracer
}

// NewRenderer creates a Renderer over set.
func NewRenderer(set *tree.Set, config RendererConfig, opts ...Option) *Renderer {
	if config.Lang == "" {
		config.Lang = "en"
	}
	r := &Renderer{
		config: config,
		tracer: otel.Tracer(defaultTracerName),
	}
	r.set.Store(set)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Set returns the templates the renderer serves.
func (r *Renderer) Set() *tree.Set {
	return r.set.Load()
}

// Swap replaces the template set. Renders already in progress finish
// with the previous set.
func (r *Renderer) Swap(set *tree.Set) {
	r.set.Store(set)
}

// Template returns the named template.
func (r *Renderer) Template(name string) (*tree.Template, error) {
	return r.Set().Get(name)
}

// RenderToString renders the named template to a string.
func (r *Renderer) RenderToString(ctx context.Context, name string, data any) (string, error) {
	return r.render(ctx, name, data)
}

// RenderToWriter renders the named template and writes it to w. Nothing
// is written when rendering fails.
func (r *Renderer) RenderToWriter(ctx context.Context, w io.Writer, name string, data any) error {
	out, err := r.render(ctx, name, data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// RenderNode renders a node that is not part of the set, such as a
// template sent for preview. It is traced and counted under name.
func (r *Renderer) RenderNode(ctx context.Context, name string, node markup.Node, data any) (string, error) {
	return r.observe(ctx, name, func() (string, error) {
		return markup.Render(node, r.contextOr(data, nil))
	})
}

func (r *Renderer) render(ctx context.Context, name string, data any) (string, error) {
	return r.observe(ctx, name, func() (string, error) {
		t, err := r.Set().Get(name)
		if err != nil {
			return "", err
		}
		return t.Render(r.contextOr(data, t))
	})
}

// observe wraps a render in a span and records its metrics.
func (r *Renderer) observe(ctx context.Context, name string, fn func() (string, error)) (string, error) {
	_, span := r.tracer.Start(ctx, "render "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("htmlfn.template", name)),
	)
	defer span.End()

	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start).Seconds()

	if err != nil {
		code := errorCode(err)
		label := name
		if code == "H040" {
			label = "unknown"
		}
		r.metrics.observe(label, elapsed, 0, code)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("htmlfn.error_code", code))
		return "", err
	}

	r.metrics.observe(name, elapsed, len(out), "")
	span.SetAttributes(attribute.Int("htmlfn.output_bytes", len(out)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// contextOr picks the render context: explicit data, then the configured
// default, then the template's sample context.
func (r *Renderer) contextOr(data any, t *tree.Template) any {
	if data != nil {
		return data
	}
	if r.config.DefaultContext != nil {
		return r.config.DefaultContext
	}
	if t != nil {
		return t.Context
	}
	return nil
}

// errorCode returns the registry code of err, or "unknown".
func errorCode(err error) string {
	var he *herrors.Error
	if herrors.As(err, &he) && he.Code != "" {
		return he.Code
	}
	return "unknown"
}

// titleOf returns the page title for a template, falling back to its name.
func titleOf(t *tree.Template) string {
	if t.Title != "" {
		return t.Title
	}
	return strings.ReplaceAll(t.Name, "/", " ")
}
