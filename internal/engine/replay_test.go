package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/testutil"
)

// playGame plays every horizontal swap on the bottom two rows plus one
// out-of-bounds swap, returning the move log and recorded events.
func playGame(t *testing.T, cfg engine.GameConfig) ([]ir.Move, []ir.Event) {
	t.Helper()
	ctx := context.Background()
	rec := engine.NewMemoryRecorder()
	r, _, err := engine.NewGame(ctx, cfg, nil, nil,
		engine.WithScheduler(engine.ImmediateScheduler{}),
		engine.WithRecorder(rec),
		engine.WithLogger(quietLogger()),
	)
	require.NoError(t, err)

	var moves []ir.Move
	play := func(a, b [2]int) {
		res, err := r.AttemptSwap(ctx, c(a[0], a[1]), c(b[0], b[1]))
		if res.Outcome != ir.MoveRejected {
			require.NoError(t, err)
		}
		moves = append(moves, ir.Move{
			GameID:  cfg.ID,
			Number:  res.Move,
			A:       a,
			B:       b,
			Outcome: res.Outcome,
		})
	}
	for row := 0; row < 2; row++ {
		for col := 0; col+1 < cfg.Width; col++ {
			play([2]int{col, row}, [2]int{col + 1, row})
		}
	}
	play([2]int{cfg.Width - 1, 0}, [2]int{cfg.Width, 0})
	return moves, rec.Events()
}

func replayConfig() engine.GameConfig {
	return engine.GameConfig{ID: "replay-game", Width: 6, Height: 6, Kinds: 4, Seed: 7}
}

func TestReplay_RebuildsSameBoard(t *testing.T) {
	cfg := replayConfig()
	moves, events := playGame(t, cfg)
	require.NotEmpty(t, events)
	assert.Equal(t, ir.MoveRejected, moves[len(moves)-1].Outcome)

	r, err := engine.Replay(context.Background(), cfg, moves, engine.WithLogger(quietLogger()))
	require.NoError(t, err)

	settled := events[len(events)-1]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == ir.EventSettled || events[i].Type == ir.EventGameStarted {
			settled = events[i]
			break
		}
	}
	want, ok := settled.Payload.GetString("board_hash")
	require.True(t, ok)
	got, err := engine.HashBoard(r.Grid())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(len(moves)), r.Moves())
}

func TestVerifyReplay_Deterministic(t *testing.T) {
	cfg := replayConfig()
	moves, events := playGame(t, cfg)

	report, err := engine.VerifyReplay(context.Background(), cfg, moves, events)
	require.NoError(t, err)
	assert.True(t, report.Deterministic)
	assert.Zero(t, report.DivergedAt)
	assert.Equal(t, report.Recorded, report.Replayed)
}

func TestVerifyReplay_DifferentSeedDiverges(t *testing.T) {
	cfg := replayConfig()
	moves, events := playGame(t, cfg)

	cfg.Seed = 8
	report, err := engine.VerifyReplay(context.Background(), cfg, moves, events)
	require.NoError(t, err)
	assert.False(t, report.Deterministic)
	assert.Equal(t, int64(1), report.DivergedAt, "game_started already differs")
}

func TestReplay_OutcomeMismatch(t *testing.T) {
	cfg := replayConfig()
	moves, _ := playGame(t, cfg)

	tampered := append([]ir.Move(nil), moves...)
	tampered[0].Outcome = ir.MoveResolved
	if moves[0].Outcome == ir.MoveResolved {
		tampered[0].Outcome = ir.MoveReverted
	}
	_, err := engine.Replay(context.Background(), cfg, tampered, engine.WithLogger(quietLogger()))
	require.Error(t, err)
	assert.True(t, engine.IsMismatch(err))
}

func TestReplay_AbortedMove(t *testing.T) {
	cfg := engine.GameConfig{ID: "aborted", Kinds: 2, Layout: []string{"AABA"}, MaxPasses: 3}
	moves := []ir.Move{
		{GameID: "aborted", Number: 1, A: [2]int{2, 0}, B: [2]int{3, 0}, Outcome: ir.MoveAborted},
		{GameID: "aborted", Number: 2, A: [2]int{0, 0}, B: [2]int{1, 0}, Outcome: ir.MoveRejected},
	}
	replay := func(moves []ir.Move) (*engine.Resolver, error) {
		return engine.Replay(context.Background(), cfg, moves,
			engine.WithKindSource(testutil.NewScriptedSource(0)),
			engine.WithLogger(quietLogger()),
		)
	}

	r, err := replay(moves)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAB"}, r.Grid().Layout())
	assert.Equal(t, int64(2), r.Moves())

	// A move logged as rejected while the replay aborts it is a divergence.
	tampered := append([]ir.Move(nil), moves...)
	tampered[0].Outcome = ir.MoveRejected
	_, err = replay(tampered)
	require.Error(t, err)
	assert.True(t, engine.IsCascadeLimit(err))
}
