package feed

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/tilematch/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Handler upgrades requests to websockets and connects them to a session.
type Handler struct {
	hub      *Hub
	session  *engine.Session
	upgrader websocket.Upgrader
}

// NewHandler serves session through hub. The hub must be the one passed to
// engine.NewGame and engine.WithMoveFunc for the session's resolver.
func NewHandler(hub *Hub, session *engine.Session) *Handler {
	return &Handler{
		hub:     hub,
		session: session,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP runs one client connection until it closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	c := h.hub.register()
	if c == nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		return
	}
	defer h.hub.unregister(c)
	h.hub.logger.Info("feed client connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, c.send)
	}()

	snap, err := h.session.Snapshot(r.Context())
	if err != nil {
		h.hub.sendTo(c, Message{Type: TypeError, Error: err.Error()})
	} else {
		h.hub.sendTo(c, Message{Type: TypeSnapshot, Snapshot: &snap})
	}

	h.readPump(conn, c)
	h.hub.unregister(c)
	<-done
	h.hub.logger.Info("feed client disconnected", "remote", r.RemoteAddr)
}

// readPump turns client frames into session requests. Replies reach every
// client through the hub's OnMove, so nothing is awaited here.
func (h *Handler) readPump(conn *websocket.Conn, c *client) {
	conn.SetReadLimit(maxMessageSize)
	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.hub.logger.Debug("feed read failed", "error", err)
			}
			return
		}
		if req.Type != TypeSwap {
			h.hub.sendTo(c, Message{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", req.Type)})
			continue
		}
		if _, err := h.session.Submit(req.SwapRequest()); err != nil {
			h.hub.sendTo(c, Message{Type: TypeError, Error: err.Error()})
		}
	}
}

// writePump writes queued frames until send is closed.
func writePump(conn *websocket.Conn, send <-chan []byte) {
	for data := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
