package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/level"
	"github.com/roach88/tilematch/internal/store"
	"github.com/roach88/tilematch/internal/testutil"
)

// ErrCodeOutOfBounds is the expect code for a swap naming a slot off the
// board. Other codes are engine.RuntimeErrorCode values.
const ErrCodeOutOfBounds = "OUT_OF_BOUNDS"

// Harness is the scenario execution engine.
// It runs scenarios with a fixed game ID and an immediate scheduler.
type Harness struct {
	store    *store.Store
	resolver *engine.Resolver
	hooks    *testutil.RecordingHooks
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Compile the inline level with the CUE level schema
// 2. Build the game (settling a layout with gaps or matches) and write its
//    header
// 3. Apply each move and check its expect clause
// 4. Read the trace back from the store and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	lvl, err := compileLevel(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		hooks:  testutil.NewRecordingHooks(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	ids := testutil.NewFixedIDGenerator(scenario.GameID)
	cfg := lvl.GameConfig(ids.Generate(), nil)
	if err := h.start(ctx, lvl, cfg, scenario.Refill); err != nil {
		return nil, err
	}

	result := NewResult()
	result.GameID = cfg.ID

	for i, step := range scenario.Moves {
		if err := h.executeMove(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.resolver.Grid()) {
		result.AddError(msg)
	}
	return result, nil
}

// compileLevel runs the inline level through the same schema as level files.
func compileLevel(scenario *Scenario) (*level.Level, error) {
	v := cuecontext.New().Encode(scenario.Level)
	lvl, err := level.Compile(v)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: level: %w", scenario.Name, err)
	}
	lvl.Name = scenario.Name
	if verrs := level.Validate(lvl); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, fmt.Errorf("scenario %s: level: %w", scenario.Name, errors.Join(errs...))
	}
	return lvl, nil
}

func (h *Harness) start(ctx context.Context, lvl *level.Level, cfg engine.GameConfig, refill []int) error {
	opts := append(lvl.Options(),
		engine.WithScheduler(engine.ImmediateScheduler{}),
		engine.WithRecorder(h.store),
		engine.WithLogger(h.logger),
	)
	if len(refill) > 0 {
		opts = append(opts, engine.WithKindSource(testutil.NewScriptedSource(refill...)))
	}

	r, _, err := engine.NewGame(ctx, cfg, h.hooks, h.hooks, opts...)
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	h.resolver = r

	boardHash, err := engine.HashBoard(r.Grid())
	if err != nil {
		return err
	}
	levelHash, err := lvl.Hash()
	if err != nil {
		return err
	}
	return h.store.WriteGame(ctx, ir.Game{
		ID:        cfg.ID,
		Name:      cfg.Name,
		Seed:      cfg.Seed,
		Width:     r.Grid().Width(),
		Height:    r.Grid().Height(),
		Kinds:     cfg.Kinds,
		Level:     lvl.Object(),
		LevelHash: levelHash,
		BoardHash: boardHash,
		Engine:    ir.EngineVersion,
	})
}

// executeMove applies one swap, logs it and checks its expect clause.
func (h *Harness) executeMove(ctx context.Context, index int, step MoveStep, result *Result) error {
	a := board.Coord{Col: step.Swap[0][0], Row: step.Swap[0][1]}
	b := board.Coord{Col: step.Swap[1][0], Row: step.Swap[1][1]}

	res, swapErr := h.resolver.AttemptSwap(ctx, a, b)

	boardHash, err := engine.HashBoard(h.resolver.Grid())
	if err != nil {
		return err
	}
	if err := h.store.WriteMove(ctx, ir.Move{
		GameID:    h.resolver.GameID(),
		Number:    res.Move,
		A:         [2]int{a.Col, a.Row},
		B:         [2]int{b.Col, b.Row},
		Outcome:   res.Outcome,
		Passes:    res.Passes,
		BoardHash: boardHash,
	}); err != nil {
		return fmt.Errorf("moves[%d]: %w", index, err)
	}

	if step.Expect == nil {
		if swapErr != nil {
			result.AddError(fmt.Sprintf("moves[%d] %s-%s: unexpected error: %v", index, a, b, swapErr))
		}
		return nil
	}

	exp := step.Expect
	if got := string(res.Outcome); got != exp.Outcome {
		result.AddError(fmt.Sprintf("moves[%d] %s-%s: expected outcome %s, got %s", index, a, b, exp.Outcome, got))
	}
	if exp.Passes != nil && *exp.Passes != res.Passes {
		result.AddError(fmt.Sprintf("moves[%d] %s-%s: expected %d passes, got %d", index, a, b, *exp.Passes, res.Passes))
	}
	if got := ErrorCode(swapErr); got != exp.Error {
		result.AddError(fmt.Sprintf("moves[%d] %s-%s: expected error %q, got %q (%v)", index, a, b, exp.Error, got, swapErr))
	}
	return nil
}

// collect reads the trace and move log back from the store.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	events, err := h.store.ReadEvents(ctx, result.GameID)
	if err != nil {
		return err
	}
	for _, ev := range events {
		result.Trace = append(result.Trace, TraceEvent{
			ID:      ev.ID,
			Seq:     ev.Seq,
			Move:    ev.Move,
			Pass:    ev.Pass,
			Type:    ev.Type,
			Payload: ev.Payload,
		})
	}
	result.Moves, err = h.store.ReadMoves(ctx, result.GameID)
	if err != nil {
		return err
	}
	result.Rows = h.resolver.Grid().Layout()
	return nil
}

// ErrorCode classifies a swap error for expect clauses. Returns "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	if board.IsOutOfBounds(err) {
		return ErrCodeOutOfBounds
	}
	return "ERROR"
}
