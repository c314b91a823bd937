package store

import (
	"context"
	"fmt"

	"github.com/roach88/tilematch/internal/ir"
)

// GameLog is everything stored for one game, with a summary for resuming it.
type GameLog struct {
	Game   ir.Game
	Moves  []ir.Move
	Events []ir.Event

	LastSeq  int64
	LastMove int64

	// Interrupted is true when the last recorded event does not close a
	// move: the process stopped mid-cascade and the board needs settling
	// after replay.
	Interrupted bool

	// AbortedAt is the number of the first move logged as aborted, 0 if
	// none. The board after it never settled, so the game cannot continue.
	AbortedAt int64

	// Unlogged counts moves with events but no move row, which happens when
	// the process stopped between the cascade and WriteMove.
	Unlogged int
}

// LoadGame reads a game and its full history.
func (s *Store) LoadGame(ctx context.Context, gameID string) (GameLog, error) {
	log := GameLog{}

	game, err := s.ReadGame(ctx, gameID)
	if err != nil {
		return log, fmt.Errorf("load game %s: %w", gameID, err)
	}
	log.Game = game

	log.Moves, err = s.ReadMoves(ctx, gameID)
	if err != nil {
		return log, fmt.Errorf("load game %s: %w", gameID, err)
	}
	log.Events, err = s.ReadEvents(ctx, gameID)
	if err != nil {
		return log, fmt.Errorf("load game %s: %w", gameID, err)
	}

	if n := len(log.Moves); n > 0 {
		log.LastMove = log.Moves[n-1].Number
	}
	for _, m := range log.Moves {
		if m.Outcome == ir.MoveAborted {
			log.AbortedAt = m.Number
			break
		}
	}
	if n := len(log.Events); n > 0 {
		last := log.Events[n-1]
		log.LastSeq = last.Seq
		log.Interrupted = !closesMove(last.Type)
		if last.Move > log.LastMove {
			log.Unlogged = int(last.Move - log.LastMove)
		}
	}
	return log, nil
}

// closesMove reports whether an event of type t is the last event of a
// completed step.
func closesMove(t ir.EventType) bool {
	switch t {
	case ir.EventGameStarted, ir.EventSettled, ir.EventSwapReverted, ir.EventSwapRejected:
		return true
	}
	return false
}
