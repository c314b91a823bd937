package feed

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/engine"
)

// sendBuffer is the number of frames queued per client. A client that falls
// this far behind is disconnected.
const sendBuffer = 256

// client is one connected websocket.
type client struct {
	send chan []byte
}

// Hub fans messages out to every connected client.
//
// Hub implements engine.VisualHook and engine.BombHook; pass it to
// engine.NewGame. OnMove is an engine.MoveFunc; pass it to the session with
// engine.WithMoveFunc.
//
// Thread-safety: all methods are safe for concurrent use. Broadcasts never
// block the session goroutine.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	logger  *slog.Logger
}

// NewHub creates a hub with no clients. A nil logger uses slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

var (
	_ engine.VisualHook = (*Hub)(nil)
	_ engine.BombHook   = (*Hub)(nil)
	_ engine.MoveFunc   = (*Hub)(nil).OnMove
)

// OnPieceRemoved broadcasts a removed message.
func (h *Hub) OnPieceRemoved(col, row int, kind board.Kind) {
	h.Broadcast(Message{Type: TypeRemoved, At: &[2]int{col, row}, Kind: kind.String()})
}

// OnPieceCreated broadcasts a created message.
func (h *Hub) OnPieceCreated(col, row int, kind board.Kind, special board.Special) {
	h.Broadcast(Message{
		Type:    TypeCreated,
		At:      &[2]int{col, row},
		Kind:    kind.String(),
		Special: special.String(),
	})
}

// OnLargeMatch broadcasts a large_match message.
func (h *Hub) OnLargeMatch(count int) {
	h.Broadcast(Message{Type: TypeLargeMatch, Count: count})
}

// OnMove broadcasts the outcome of a processed swap with the board after it.
func (h *Hub) OnMove(req engine.SwapRequest, reply engine.SwapReply, after engine.Snapshot) {
	h.Broadcast(moveMessage(req, reply, after))
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode feed message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("feed client too slow, disconnecting")
			h.removeLocked(c)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Later registrations fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// register adds a client. Returns nil once the hub is closed.
func (h *Hub) register() *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	c := &client{send: make(chan []byte, sendBuffer)}
	h.clients[c] = struct{}{}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes c's send channel, which ends its writer. Caller holds
// h.mu.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// sendTo queues msg for a single client. Returns false if c is gone or full.
func (h *Hub) sendTo(c *client, msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encode feed message", "type", msg.Type, "error", err)
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		h.removeLocked(c)
		return false
	}
}
