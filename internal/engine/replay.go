package engine

// # Replay
//
// A game is never restored from a stored board. It is rebuilt:
//
//	[GameConfig] -> NewGame (seeded fill) -> AttemptSwap(move 1) -> ... -> AttemptSwap(move n)
//
// This works because nothing in the resolver reads wall-clock time or an
// unseeded random source:
//
//  1. Kinds come from a PCG source seeded with the game seed, consumed in a
//     fixed order (initial fill column-major, then each refill column-major).
//  2. Events are stamped by the logical Clock, which advances once per event.
//  3. Event IDs hash the game, seq, move, pass, type and payload with
//     canonical JSON, so identical steps produce identical IDs.
//
// Writing a replayed event that is already stored is a no-op at the store
// (ON CONFLICT DO NOTHING on the ID), so a caller may replay into the same
// recorder it will append new moves to.

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/ir"
)

// MismatchError reports a replayed move whose outcome differs from the log.
type MismatchError struct {
	Move     int64
	Expected ir.MoveOutcome
	Actual   ir.MoveOutcome
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("replay diverged at move %d: recorded %s, replayed %s", e.Move, e.Expected, e.Actual)
}

// IsMismatch reports whether err is a *MismatchError.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}

// Replay rebuilds a game from cfg and re-applies moves in order. It uses an
// ImmediateScheduler unless opts override it.
func Replay(ctx context.Context, cfg GameConfig, moves []ir.Move, opts ...Option) (*Resolver, error) {
	opts = append([]Option{WithScheduler(ImmediateScheduler{})}, opts...)
	r, _, err := NewGame(ctx, cfg, nil, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	for _, m := range moves {
		a := board.Coord{Col: m.A[0], Row: m.A[1]}
		b := board.Coord{Col: m.B[0], Row: m.B[1]}
		res, err := r.AttemptSwap(ctx, a, b)
		if err != nil && !(res.Outcome == m.Outcome && failedOutcome(m.Outcome)) {
			return r, fmt.Errorf("replay move %d: %w", m.Number, err)
		}
		if res.Outcome != m.Outcome {
			return r, &MismatchError{Move: m.Number, Expected: m.Outcome, Actual: res.Outcome}
		}
	}
	return r, nil
}

// failedOutcome reports whether a move with outcome o was logged with an
// error that replay reproduces rather than fails on.
func failedOutcome(o ir.MoveOutcome) bool {
	return o == ir.MoveRejected || o == ir.MoveAborted
}

// ReplayReport compares a replay with a stored event log.
type ReplayReport struct {
	GameID        string `json:"game_id"`
	Moves         int    `json:"moves"`
	Recorded      int    `json:"recorded"`
	Replayed      int    `json:"replayed"`
	Deterministic bool   `json:"deterministic"`

	// DivergedAt is the seq of the first differing event, 0 if none.
	DivergedAt int64 `json:"diverged_at,omitempty"`
}

// VerifyReplay replays a game into memory and compares every event ID with
// recorded, which must be in seq order.
func VerifyReplay(ctx context.Context, cfg GameConfig, moves []ir.Move, recorded []ir.Event) (ReplayReport, error) {
	report := ReplayReport{GameID: cfg.ID, Moves: len(moves), Recorded: len(recorded)}
	rec := NewMemoryRecorder()
	if _, err := Replay(ctx, cfg, moves, WithRecorder(rec)); err != nil && !IsMismatch(err) {
		return report, err
	}
	replayed := rec.Events()
	report.Replayed = len(replayed)

	for i := 0; i < min(len(recorded), len(replayed)); i++ {
		if recorded[i].ID != replayed[i].ID {
			report.DivergedAt = recorded[i].Seq
			return report, nil
		}
	}
	switch {
	case len(recorded) > len(replayed):
		report.DivergedAt = recorded[len(replayed)].Seq
	case len(replayed) > len(recorded):
		report.DivergedAt = replayed[len(recorded)].Seq
	default:
		report.Deterministic = true
	}
	return report, nil
}
