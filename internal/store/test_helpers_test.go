package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tilematch/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestGame creates a game header with minimal required fields.
func createTestGame(id string) ir.Game {
	return ir.Game{
		ID:        id,
		Name:      "test",
		Seed:      42,
		Width:     3,
		Height:    3,
		Kinds:     4,
		Level:     ir.Object{"width": ir.Int(3), "height": ir.Int(3)},
		LevelHash: "level-hash",
		BoardHash: "board-hash",
	}
}

// createTestEvent creates a content-addressed event.
func createTestEvent(t *testing.T, gameID string, seq, move int64, typ ir.EventType, payload ir.Object) ir.Event {
	t.Helper()
	id, err := ir.EventID(gameID, seq, move, 0, typ, payload)
	if err != nil {
		t.Fatalf("EventID() failed: %v", err)
	}
	return ir.Event{ID: id, GameID: gameID, Seq: seq, Move: move, Type: typ, Payload: payload}
}
