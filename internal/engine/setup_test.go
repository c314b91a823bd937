package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/match"
	"github.com/roach88/tilematch/internal/testutil"
)

func TestInitialize_NoStartingMatches(t *testing.T) {
	det := match.NewDetector()
	for seed := int64(0); seed < 50; seed++ {
		g, report, err := engine.Initialize(8, 8, 4, engine.NewSeededSource(seed), det)
		require.NoError(t, err)
		assert.Empty(t, report.Unresolved, "seed %d", seed)
		assert.True(t, det.Scan(g).Empty(), "seed %d starts with a match", seed)
		assert.Equal(t, 64, g.Count())
	}
}

func TestInitialize_SameSeedSameBoard(t *testing.T) {
	det := match.NewDetector()
	a, _, err := engine.Initialize(6, 5, 5, engine.NewSeededSource(9), det)
	require.NoError(t, err)
	b, _, err := engine.Initialize(6, 5, 5, engine.NewSeededSource(9), det)
	require.NoError(t, err)
	assert.Equal(t, a.Layout(), b.Layout())
}

func TestInitialize_SingleKindExhaustsResamples(t *testing.T) {
	g, report, err := engine.Initialize(3, 3, 1, engine.NewSeededSource(1), match.NewDetector())
	require.NoError(t, err)

	want := []board.Coord{
		{Col: 0, Row: 2},
		{Col: 1, Row: 2},
		{Col: 2, Row: 0},
		{Col: 2, Row: 1},
		{Col: 2, Row: 2},
	}
	assert.Equal(t, want, report.Unresolved)
	assert.Equal(t, len(want)*engine.MaxSetupResamples, report.Collisions)
	assert.Equal(t, []string{"AAA", "AAA", "AAA"}, g.Layout())
}

func TestInitialize_Validation(t *testing.T) {
	det := match.NewDetector()
	_, _, err := engine.Initialize(3, 3, 0, engine.NewSeededSource(1), det)
	assert.Error(t, err)
	_, _, err = engine.Initialize(3, 3, board.MaxKinds+1, engine.NewSeededSource(1), det)
	assert.Error(t, err)
	_, _, err = engine.Initialize(0, 3, 3, engine.NewSeededSource(1), det)
	assert.ErrorIs(t, err, board.ErrInvalidDimensions)
}

func TestNewGame_SettlesMatchedLayout(t *testing.T) {
	ctx := context.Background()
	rec := engine.NewMemoryRecorder()
	sched := &testutil.RecordingScheduler{}
	r, _, err := engine.NewGame(ctx, engine.GameConfig{
		ID:    "layout",
		Kinds: 4,
		Layout: []string{
			"CDCD",
			"DCDC",
			"AAAB",
		},
	}, nil, nil,
		engine.WithKindSource(testutil.NewScriptedSource(0, 1, 0)),
		engine.WithScheduler(sched),
		engine.WithRecorder(rec),
		engine.WithLogger(quietLogger()),
	)
	require.NoError(t, err)

	assertSettled(t, r)
	assert.Equal(t, []string{
		"ABAD",
		"CDCC",
		"DCDB",
	}, r.Grid().Layout())
	assert.Empty(t, sched.Points(), "setup skips the pauses")

	events := rec.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, ir.EventGameStarted, events[0].Type)
	assert.Equal(t, ir.EventSettled, events[len(events)-1].Type)
	assert.Contains(t, rec.Types(), ir.EventPieceRemoved)
	for _, ev := range events {
		assert.Equal(t, int64(0), ev.Move, "setup is recorded under move 0")
	}
	rows, ok := events[0].Payload["rows"].(ir.Array)
	require.True(t, ok)
	assert.Equal(t, ir.String("AAAB"), rows[2], "game_started keeps the layout as written")

	// The old bottom run is gone, so a swap that makes nothing is reverted.
	res, err := r.AttemptSwap(ctx, c(0, 2), c(1, 2))
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, ir.MoveReverted, res.Outcome)
}

func TestNewGame_FillsLayoutGaps(t *testing.T) {
	r, _, err := engine.NewGame(context.Background(), engine.GameConfig{
		ID:     "gap",
		Kinds:  3,
		Layout: []string{"ABC", "B.A", "CAB"},
	}, nil, nil,
		engine.WithKindSource(testutil.NewScriptedSource(1)),
		engine.WithScheduler(engine.ImmediateScheduler{}),
		engine.WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	assertSettled(t, r)
	assert.Equal(t, []string{"ABC", "BBA", "CAB"}, r.Grid().Layout())
}
