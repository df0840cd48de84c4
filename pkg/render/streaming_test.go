package render

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStreamingRendererRenderPage(t *testing.T) {
	w := httptest.NewRecorder()
	r, _ := newTestRenderer(t)

	sr := NewStreamingRenderer(w, r)
	if err := sr.RenderPage(context.Background(), "hello", map[string]any{"who": "stream"}, PageData{Title: "Streaming Test"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := w.Body.String()
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("should start with DOCTYPE")
	}
	if !strings.Contains(html, "<title>Streaming Test</title>") {
		t.Errorf("should contain title")
	}
	if !strings.Contains(html, "<h1>Hello, stream</h1>") {
		t.Errorf("should contain body content")
	}
	if !w.Flushed {
		t.Errorf("recorder should have been flushed")
	}
}

func TestStreamingRendererFlushes(t *testing.T) {
	var buf bytes.Buffer
	fw := &FlushableWriter{Writer: &buf}
	r, _ := newTestRenderer(t)

	sr := &StreamingRenderer{Renderer: r, flusher: fw, w: fw}
	if err := sr.RenderPage(context.Background(), "hello", nil, PageData{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// head, body, close
	if fw.FlushCount != 3 {
		t.Errorf("expected 3 flushes, got %d", fw.FlushCount)
	}
}

func TestStreamingRendererBodyError(t *testing.T) {
	var buf bytes.Buffer
	fw := &FlushableWriter{Writer: &buf}
	r, _ := newTestRenderer(t)

	sr := &StreamingRenderer{Renderer: r, flusher: fw, w: fw}
	err := sr.RenderPage(context.Background(), "broken", map[string]any{"obj": struct{}{}}, PageData{})
	if err == nil {
		t.Fatal("expected error")
	}

	// The head was already flushed.
	if fw.FlushCount != 1 || !strings.Contains(buf.String(), "<body>") {
		t.Errorf("flushes = %d, output %q", fw.FlushCount, buf.String())
	}
}

func TestStreamingRendererUnknownTemplate(t *testing.T) {
	var buf bytes.Buffer
	fw := &FlushableWriter{Writer: &buf}
	r, _ := newTestRenderer(t)

	sr := &StreamingRenderer{Renderer: r, flusher: fw, w: fw}
	err := sr.RenderPage(context.Background(), "missing", nil, PageData{})
	if code := errorCode(err); code != "H040" {
		t.Fatalf("expected H040, got %q (%v)", code, err)
	}

	// Nothing is written before the template resolves.
	if buf.Len() != 0 || fw.FlushCount != 0 {
		t.Errorf("flushes = %d, output %q", fw.FlushCount, buf.String())
	}
}
