package testutil

import (
	"sync"

	"github.com/roach88/tilematch/internal/board"
)

// PieceEvent is one hook notification.
type PieceEvent struct {
	Col     int
	Row     int
	Kind    board.Kind
	Special board.Special
}

// RecordingHooks implements engine.VisualHook and engine.BombHook by
// recording every call.
//
// Thread-safety: safe for concurrent use via internal mutex.
type RecordingHooks struct {
	mu           sync.Mutex
	removed      []PieceEvent
	created      []PieceEvent
	largeMatches []int
}

// NewRecordingHooks creates an empty recorder.
func NewRecordingHooks() *RecordingHooks {
	return &RecordingHooks{}
}

func (h *RecordingHooks) OnPieceRemoved(col, row int, kind board.Kind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, PieceEvent{Col: col, Row: row, Kind: kind})
}

func (h *RecordingHooks) OnPieceCreated(col, row int, kind board.Kind, special board.Special) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created = append(h.created, PieceEvent{Col: col, Row: row, Kind: kind, Special: special})
}

func (h *RecordingHooks) OnLargeMatch(count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.largeMatches = append(h.largeMatches, count)
}

// Removed returns a copy of the removal notifications.
func (h *RecordingHooks) Removed() []PieceEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]PieceEvent(nil), h.removed...)
}

// Created returns a copy of the creation notifications.
func (h *RecordingHooks) Created() []PieceEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]PieceEvent(nil), h.created...)
}

// LargeMatches returns the counts passed to OnLargeMatch.
func (h *RecordingHooks) LargeMatches() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.largeMatches...)
}
