package render

import (
	"context"
	"io"
	"net/http"
)

// StreamingRenderer wraps Renderer with chunked output support.
// It flushes the head before the body is rendered for faster first paint.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer that writes to w. If
// w implements http.Flusher, content is flushed after each section.
func NewStreamingRenderer(w http.ResponseWriter, r *Renderer) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: r,
		flusher:  flusher,
		w:        w,
	}
}

// RenderPage renders a complete HTML document with incremental flushing.
// Unlike Renderer.RenderPage the head has already been sent when the body
// fails, so callers can only report the error after the fact.
func (s *StreamingRenderer) RenderPage(ctx context.Context, name string, data any, page PageData) error {
	t, err := s.Set().Get(name)
	if err != nil {
		return err
	}
	if page.Title == "" {
		page.Title = titleOf(t)
	}

	if err := s.renderOpen(s.w, page); err != nil {
		return err
	}
	s.flush()

	if err := s.RenderToWriter(ctx, s.w, name, data); err != nil {
		return err
	}
	s.flush()

	if err := s.renderClose(s.w, page); err != nil {
		return err
	}
	s.flush()

	return nil
}

// flush flushes the writer if it supports flushing.
func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// FlushableWriter wraps an io.Writer with a flush counter.
// This is useful for testing streaming behavior without using http.ResponseWriter.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
