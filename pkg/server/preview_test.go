package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/htmlfn/pkg/tree"
)

func dialPreview(t *testing.T, s *Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/preview/ws"
	return websocket.DefaultDialer.Dial(url, header)
}

func roundTrip(t *testing.T, conn *websocket.Conn, req PreviewRequest) PreviewMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteJSON(req))
	var msg PreviewMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestPreview(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	conn, _, err := dialPreview(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()

	tests := []struct {
		name string
		req  PreviewRequest
		want PreviewMessage
	}{
		{
			name: "document",
			req:  PreviewRequest{ID: "1", Document: "body: {tag: b, children: {path: x}}", Context: map[string]any{"x": "<y>"}},
			want: PreviewMessage{ID: "1", Type: PreviewTypeHTML, HTML: "<b>&lt;y&gt;</b>"},
		},
		{
			name: "document sample context",
			req:  PreviewRequest{ID: "2", Document: "context: {n: 2}\nbody: {path: n}"},
			want: PreviewMessage{ID: "2", Type: PreviewTypeHTML, HTML: "2"},
		},
		{
			name: "named template",
			req:  PreviewRequest{ID: "3", Template: "hello", Context: map[string]any{"who": "ws"}},
			want: PreviewMessage{ID: "3", Type: PreviewTypeHTML, HTML: "<p>Hi ws</p>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roundTrip(t, conn, tt.req))
		})
	}
}

func TestPreviewErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	conn, _, err := dialPreview(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := roundTrip(t, conn, PreviewRequest{ID: "a", Document: "body:\n  - blink: 1\n"})
	assert.Equal(t, PreviewTypeError, msg.Type)
	assert.Equal(t, "H011", msg.Code)
	assert.Equal(t, 2, msg.Line)

	msg = roundTrip(t, conn, PreviewRequest{ID: "b", Template: "missing"})
	assert.Equal(t, "H040", msg.Code)

	msg = roundTrip(t, conn, PreviewRequest{ID: "c"})
	assert.Equal(t, PreviewTypeError, msg.Type)
	assert.Contains(t, msg.Error, "document or a template")
}

func TestPreviewRejectsForeignOrigin(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	_, resp, err := dialPreview(t, s, http.Header{"Origin": []string{"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPreviewCloseDisconnectsClients(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	conn, _, err := dialPreview(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()

	// A round trip guarantees the server registered the client.
	roundTrip(t, conn, PreviewRequest{Document: "body: x"})
	assert.Equal(t, 1, s.Preview().ClientCount())

	s.Preview().Close()
	assert.Equal(t, 0, s.Preview().ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestReloadNotifiesPreviewClients(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	conn, _, err := dialPreview(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()
	roundTrip(t, conn, PreviewRequest{Document: "body: x"})

	tmpl, err := tree.Parse("fresh", []byte("body: new"))
	require.NoError(t, err)
	set, err := tree.NewSet(tmpl)
	require.NoError(t, err)
	s.Reload(set)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg PreviewMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, PreviewMessage{Type: PreviewTypeReload, Templates: []string{"fresh"}}, msg)

	msg = roundTrip(t, conn, PreviewRequest{ID: "r", Template: "fresh"})
	assert.Equal(t, "new", msg.HTML)

	rec := do(t, s, http.MethodGet, "/render/hello", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
