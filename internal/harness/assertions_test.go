package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/ir"
)

func testTrace() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Type: ir.EventGameStarted, Payload: ir.Object{"width": ir.Int(3)}},
		{Seq: 2, Move: 1, Type: ir.EventSwapAccepted, Payload: ir.Object{
			"a": ir.Coord(0, 0), "b": ir.Coord(1, 0), "matched": ir.Int(3),
		}},
		{Seq: 3, Move: 1, Pass: 1, Type: ir.EventPieceRemoved, Payload: ir.Object{
			"at": ir.Coord(0, 0), "kind": ir.String("A"), "special": ir.String("none"),
		}},
		{Seq: 4, Move: 1, Pass: 1, Type: ir.EventPieceRemoved, Payload: ir.Object{
			"at": ir.Coord(1, 0), "kind": ir.String("A"), "special": ir.String("none"),
		}},
		{Seq: 5, Move: 1, Type: ir.EventSettled, Payload: ir.Object{"passes": ir.Int(1)}},
	}
	r.Rows = []string{"ABC", "BCA"}
	return r
}

func settledGrid(t *testing.T) *board.Grid {
	t.Helper()
	g, err := board.ParseLayout([]string{"ABC", "BCA", "CAB"})
	require.NoError(t, err)
	return g
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertTraceContains, Event: "swap_accepted", Payload: map[string]any{"matched": 3}},
		{Type: AssertTraceContains, Event: "piece_removed", Payload: map[string]any{"at": []any{1, 0}}},
		{Type: AssertTraceContains, Event: "settled"},
		{Type: AssertTraceOrder, Events: []string{"game_started", "piece_removed", "settled"}},
		{Type: AssertTraceCount, Event: "piece_removed", Count: 2},
		{Type: AssertTraceCount, Event: "promoted", Count: 0},
		{Type: AssertFinalBoard, Rows: []string{"ABC", "BCA"}},
		{Type: AssertBoardSettled},
	}
	assert.Empty(t, EvaluateAssertions(testTrace(), assertions, settledGrid(t)))
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "payload mismatch",
			assertion: Assertion{Type: AssertTraceContains, Event: "swap_accepted", Payload: map[string]any{"matched": 4}},
			want:      "not found in trace",
		},
		{
			name:      "missing payload key",
			assertion: Assertion{Type: AssertTraceContains, Event: "settled", Payload: map[string]any{"removed": 2}},
			want:      "not found in trace",
		},
		{
			name:      "float payload",
			assertion: Assertion{Type: AssertTraceContains, Event: "settled", Payload: map[string]any{"passes": 1.5}},
			want:      "trace_contains payload",
		},
		{
			name:      "out of order",
			assertion: Assertion{Type: AssertTraceOrder, Events: []string{"settled", "piece_removed"}},
			want:      "piece_removed not found after [settled]",
		},
		{
			name:      "count",
			assertion: Assertion{Type: AssertTraceCount, Event: "piece_removed", Count: 3},
			want:      "2 times",
		},
		{
			name:      "final board",
			assertion: Assertion{Type: AssertFinalBoard, Rows: []string{"ABC", "BCB"}},
			want:      "Actual: ABC/BCA",
		},
		{
			name:      "unknown type",
			assertion: Assertion{Type: "nope"},
			want:      `unknown assertion type "nope"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(testTrace(), []Assertion{tt.assertion}, settledGrid(t))
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], "assertions[0]")
			assert.Contains(t, failures[0], tt.want)
		})
	}
}

func TestAssertBoardSettled(t *testing.T) {
	gap, err := board.ParseLayout([]string{"A.C", "BCA"})
	require.NoError(t, err)
	err = assertBoardSettled(gap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 empty slots")

	matched, err := board.ParseLayout([]string{"AAA", "BCB"})
	require.NoError(t, err)
	err = assertBoardSettled(matched)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 matched slots")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceCount,
		Expected: "settled 2 times",
		Actual:   "1 times",
		Trace:    testTrace().Trace[:2],
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: trace_count")
	assert.Contains(t, msg, "Full trace:")
	assert.Contains(t, msg, "[2] move=1 pass=0 swap_accepted")
}
