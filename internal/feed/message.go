package feed

import (
	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
)

// Message types sent to clients.
const (
	TypeSnapshot   = "snapshot"
	TypeRemoved    = "removed"
	TypeCreated    = "created"
	TypeLargeMatch = "large_match"
	TypeMove       = "move"
	TypeError      = "error"
)

// TypeSwap is the only message type clients send.
const TypeSwap = "swap"

// Message is one server-to-client frame. Fields not relevant to Type are
// omitted.
type Message struct {
	Type string `json:"type"`

	// removed, created
	At      *[2]int `json:"at,omitempty"`
	Kind    string  `json:"kind,omitempty"`
	Special string  `json:"special,omitempty"`

	// large_match
	Count int `json:"count,omitempty"`

	// move
	A       *[2]int        `json:"a,omitempty"`
	B       *[2]int        `json:"b,omitempty"`
	Move    int64          `json:"move,omitempty"`
	Outcome ir.MoveOutcome `json:"outcome,omitempty"`
	Passes  int            `json:"passes,omitempty"`

	// move, error
	Error string `json:"error,omitempty"`

	// snapshot, move
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
}

// Request is one client-to-server frame.
type Request struct {
	Type       string `json:"type"`
	A          [2]int `json:"a"`
	B          [2]int `json:"b"`
	Generation uint64 `json:"generation,omitempty"`
}

// SwapRequest converts r for the session.
func (r Request) SwapRequest() engine.SwapRequest {
	return engine.SwapRequest{
		A:          board.Coord{Col: r.A[0], Row: r.A[1]},
		B:          board.Coord{Col: r.B[0], Row: r.B[1]},
		Generation: r.Generation,
	}
}

func coord(c board.Coord) *[2]int {
	return &[2]int{c.Col, c.Row}
}

func moveMessage(req engine.SwapRequest, reply engine.SwapReply, after engine.Snapshot) Message {
	msg := Message{
		Type:     TypeMove,
		A:        coord(req.A),
		B:        coord(req.B),
		Move:     reply.Result.Move,
		Outcome:  reply.Result.Outcome,
		Passes:   reply.Result.Passes,
		Snapshot: &after,
	}
	if reply.Err != nil {
		msg.Error = reply.Err.Error()
	}
	return msg
}
