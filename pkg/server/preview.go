package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/pkg/render"
	"github.com/vango-dev/htmlfn/pkg/tree"
)

// PreviewMessageType is the type of a preview reply.
type PreviewMessageType string

const (
	PreviewTypeHTML   PreviewMessageType = "html"
	PreviewTypeError  PreviewMessageType = "error"
	PreviewTypeReload PreviewMessageType = "reload"
)

// PreviewRequest is sent by a preview client. Document is a template
// document rendered as is; otherwise Template names a loaded template.
type PreviewRequest struct {
	ID       string `json:"id,omitempty"`
	Document string `json:"document,omitempty"`
	Template string `json:"template,omitempty"`
	Context  any    `json:"context,omitempty"`
}

// PreviewMessage is the reply to a PreviewRequest, or a reload notice
// pushed to every client when the template set changes.
type PreviewMessage struct {
	ID    string             `json:"id,omitempty"`
	Type  PreviewMessageType `json:"type"`
	HTML  string             `json:"html,omitempty"`
	Error string             `json:"error,omitempty"`
	Code  string             `json:"code,omitempty"`
	Line  int                `json:"line,omitempty"`

	// Templates lists the loaded template names on reload.
	Templates []string `json:"templates,omitempty"`
}

// previewClient serializes writes to one connection.
type previewClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *previewClient) send(msg PreviewMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// PreviewHub manages websocket connections for live preview.
type PreviewHub struct {
	renderer *render.Renderer
	clients  map[*previewClient]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	maxBytes int64
	logger   *slog.Logger
}

// NewPreviewHub creates a preview hub rendering through renderer.
func NewPreviewHub(renderer *render.Renderer, config Config, logger *slog.Logger) *PreviewHub {
	return &PreviewHub{
		renderer: renderer,
		clients:  make(map[*previewClient]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(config.AllowedOrigins),
		},
		maxBytes: config.MaxBodyBytes,
		logger:   logger.With("component", "preview"),
	}
}

// HandleWebSocket upgrades the connection and answers preview requests
// until the client disconnects.
func (h *PreviewHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}
	if h.maxBytes > 0 {
		conn.SetReadLimit(h.maxBytes)
	}

	client := &previewClient{conn: conn}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Debug("preview client connected", "remote", r.RemoteAddr)

	ctx := context.WithoutCancel(r.Context())
	for {
		var req PreviewRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("preview read failed", "error", err)
			}
			break
		}
		if err := client.send(h.handle(ctx, req)); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	conn.Close()
}

func (h *PreviewHub) handle(ctx context.Context, req PreviewRequest) PreviewMessage {
	var (
		out string
		err error
	)
	switch {
	case req.Document != "":
		var t *tree.Template
		t, err = tree.Parse("preview", []byte(req.Document))
		if err == nil {
			data := req.Context
			if data == nil {
				data = t.Context
			}
			out, err = h.renderer.RenderNode(ctx, "preview", t.Root(), data)
		}
	case req.Template != "":
		out, err = h.renderer.RenderToString(ctx, req.Template, req.Context)
	default:
		err = herrors.Newf(herrors.CategoryCLI, "preview request needs a document or a template")
	}

	if err != nil {
		msg := PreviewMessage{ID: req.ID, Type: PreviewTypeError, Error: err.Error()}
		var he *herrors.Error
		if herrors.As(err, &he) {
			msg.Code = he.Code
			if he.Location != nil {
				msg.Line = he.Location.Line
			}
		}
		return msg
	}
	return PreviewMessage{ID: req.ID, Type: PreviewTypeHTML, HTML: out}
}

// Broadcast sends msg to every connected client.
func (h *PreviewHub) Broadcast(msg PreviewMessage) {
	h.mu.RLock()
	clients := make([]*previewClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(msg); err != nil {
			h.logger.Debug("preview broadcast failed", "error", err)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *PreviewHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *PreviewHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.conn.Close()
		delete(h.clients, client)
	}
}
