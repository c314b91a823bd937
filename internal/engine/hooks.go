package engine

import (
	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/promote"
)

// VisualHook receives piece lifecycle notifications.
//
// OnPieceRemoved fires once per destroyed piece, before its slot is cleared.
// OnPieceCreated fires once per refilled slot, after the piece is placed.
type VisualHook interface {
	OnPieceRemoved(col, row int, kind board.Kind)
	OnPieceCreated(col, row int, kind board.Kind, special board.Special)
}

// BombHook is notified of large matches before destruction.
type BombHook = promote.LargeMatchHook

// NopHooks ignores every notification.
type NopHooks struct{}

func (NopHooks) OnPieceRemoved(int, int, board.Kind)                {}
func (NopHooks) OnPieceCreated(int, int, board.Kind, board.Special) {}
func (NopHooks) OnLargeMatch(int)                                   {}
