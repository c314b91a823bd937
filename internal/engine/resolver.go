package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/match"
	"github.com/roach88/tilematch/internal/promote"
)

// Resolver is the cascade state machine for one board.
//
// CRITICAL: AttemptSwap and Settle must be called from one goroutine at a
// time. A second concurrent call is rejected as an invalid swap because the
// state is Waiting; it never races on the grid. State and Generation are safe
// to read from any goroutine.
//
// INVARIANTS:
//   - outside a call, no piece on the grid has Matched set
//   - the swap pair link is valid for the first destroy pass only
//   - state is ReadyForInput whenever no call is in progress, including after
//     an error
type Resolver struct {
	grid     *board.Grid
	detector *match.Detector
	policy   *promote.Policy
	hooks    VisualHook
	source   KindSource
	kinds    int

	scheduler Scheduler
	delays    Delays
	maxPasses int
	logger    *slog.Logger
	recorder  Recorder
	clock     *Clock
	gameID    string

	state      atomic.Int32
	generation atomic.Uint64
	move       int64
	epoch      uint64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDelays sets the pause at each suspension point.
func WithDelays(d Delays) Option {
	return func(r *Resolver) { r.delays = d }
}

// WithScheduler replaces the real-time scheduler.
func WithScheduler(s Scheduler) Option {
	return func(r *Resolver) { r.scheduler = s }
}

// WithMaxPasses sets the destroy pass cap per cascade.
//
// Default: 1000 (DefaultMaxPasses).
func WithMaxPasses(n int) Option {
	return func(r *Resolver) { r.maxPasses = n }
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithRecorder sets where events are written.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// WithClock sets the logical clock. Used to continue a game's sequence.
func WithClock(c *Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

// WithKindSource replaces the source refills draw from. NewGame still fills
// the starting board from the seed.
func WithKindSource(src KindSource) Option {
	return func(r *Resolver) {
		if src != nil {
			r.source = src
		}
	}
}

// WithGameID sets the game ID stamped on events.
func WithGameID(id string) Option {
	return func(r *Resolver) { r.gameID = id }
}

// Promotion records a special piece created during a move.
type Promotion struct {
	Pass    int
	At      board.Coord
	Special board.Special
}

// Result summarises one AttemptSwap or Settle call.
type Result struct {
	// Accepted is true when the swap produced a match and was kept.
	Accepted bool

	// Outcome classifies the move for the log.
	Outcome ir.MoveOutcome

	// Move is the move number assigned to the call.
	Move int64

	// Passes is the number of destroy passes run.
	Passes int

	// Removed and Created count destroyed and refilled pieces.
	Removed int
	Created int

	Promotions   []Promotion
	LargeMatches []int
}

// New creates a Resolver over grid. hooks may be nil. kinds is the number of
// piece kinds refill draws from.
func New(
	grid *board.Grid,
	detector *match.Detector,
	policy *promote.Policy,
	hooks VisualHook,
	source KindSource,
	kinds int,
	opts ...Option,
) (*Resolver, error) {
	switch {
	case grid == nil:
		return nil, errors.New("engine: nil grid")
	case detector == nil:
		return nil, errors.New("engine: nil detector")
	case policy == nil:
		return nil, errors.New("engine: nil promotion policy")
	case source == nil:
		return nil, errors.New("engine: nil kind source")
	case kinds < 1 || kinds > board.MaxKinds:
		return nil, fmt.Errorf("engine: kinds must be in [1,%d], got %d", board.MaxKinds, kinds)
	}
	if hooks == nil {
		hooks = NopHooks{}
	}

	r := &Resolver{
		grid:      grid,
		detector:  detector,
		policy:    policy,
		hooks:     hooks,
		source:    source,
		kinds:     kinds,
		scheduler: TimerScheduler{},
		delays:    DefaultDelays(),
		maxPasses: DefaultMaxPasses,
		logger:    slog.Default(),
		clock:     NewClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.generation.Store(1)
	return r, nil
}

// State returns the current game state.
func (r *Resolver) State() GameState {
	return GameState(r.state.Load())
}

// Generation increases every time a cascade settles. Requests built against
// an older generation describe a board that no longer exists.
func (r *Resolver) Generation() uint64 {
	return r.generation.Load()
}

// Grid returns the board. Callers must not mutate it and must not read it
// while the state is Waiting.
func (r *Resolver) Grid() *board.Grid {
	return r.grid
}

// GameID returns the ID stamped on events.
func (r *Resolver) GameID() string {
	return r.gameID
}

// Moves returns the number of moves attempted so far.
func (r *Resolver) Moves() int64 {
	return r.move
}

// Clock returns the logical clock.
func (r *Resolver) Clock() *Clock {
	return r.clock
}

// Kinds returns the number of piece kinds.
func (r *Resolver) Kinds() int {
	return r.kinds
}

func (r *Resolver) enter() bool {
	return r.state.CompareAndSwap(int32(ReadyForInput), int32(Waiting))
}

func (r *Resolver) leave() {
	r.state.Store(int32(ReadyForInput))
}

// AttemptSwap swaps the pieces at a and b and resolves the result.
//
// A swap that produces no match is reverted: Accepted is false and the error
// is nil. A swap that cannot be applied at all (wrong state, not adjacent,
// empty slot) returns an InvalidSwap RuntimeError; coordinates off the board
// return *board.OutOfBoundsError. Neither mutates the grid.
//
// On any error after the swap is accepted the cascade is abandoned where it
// stopped: Outcome is MoveAborted and the state returns to ReadyForInput.
// Swaps are rejected until Settle finishes such a board.
func (r *Resolver) AttemptSwap(ctx context.Context, a, b board.Coord) (res Result, err error) {
	if !r.enter() {
		return Result{Outcome: ir.MoveRejected}, NewInvalidSwapError("not ready for input",
			map[string]string{"state": Waiting.String()})
	}
	defer r.leave()
	defer func() {
		if err != nil {
			r.clearMatched()
		}
	}()

	r.move++
	res = Result{Move: r.move, Outcome: ir.MoveRejected}
	swap := ir.Object{"a": ir.Coord(a.Col, a.Row), "b": ir.Coord(b.Col, b.Row)}

	current, partner, err := r.validateSwap(a, b)
	if err != nil {
		swap["reason"] = ir.String(rejectReason(err))
		r.logger.Debug("swap rejected", "game", r.gameID, "move", r.move, "a", a, "b", b, "error", err)
		if recErr := r.emit(ctx, 0, ir.EventSwapRejected, swap); recErr != nil {
			return res, recErr
		}
		return res, err
	}

	r.epoch++
	board.Link(current, partner, r.epoch)
	defer func() {
		current.Unlink()
		partner.Unlink()
	}()

	if err := r.grid.Swap(a, b); err != nil {
		return res, fmt.Errorf("swap: %w", err)
	}

	set := r.detector.Scan(r.grid)
	if set.Empty() {
		if err := r.grid.Swap(a, b); err != nil {
			return res, fmt.Errorf("revert swap: %w", err)
		}
		res.Outcome = ir.MoveReverted
		r.logger.Debug("swap reverted", "game", r.gameID, "move", r.move, "a", a, "b", b)
		return res, r.emit(ctx, 0, ir.EventSwapReverted, swap)
	}

	res.Accepted = true
	res.Outcome = ir.MoveAborted
	if missing := match.Mark(r.grid, set); len(missing) > 0 {
		return res, NewDesyncError(r.gameID, r.move, missing[0].String())
	}
	swap["matched"] = ir.Int(set.Len())
	if err := r.emit(ctx, 0, ir.EventSwapAccepted, swap); err != nil {
		return res, err
	}

	if err := r.cascade(ctx, set, current, &res); err != nil {
		return res, err
	}
	res.Outcome = ir.MoveResolved
	return res, nil
}

// Settle runs collapse, refill and re-scan on the current board and resolves
// any matches that appear. It completes a cascade that was cancelled and
// normalises a fixed layout that starts with gaps or matches.
func (r *Resolver) Settle(ctx context.Context) (res Result, err error) {
	if !r.enter() {
		return Result{}, NewInvalidSwapError("not ready for input",
			map[string]string{"state": Waiting.String()})
	}
	defer r.leave()
	defer func() {
		if err != nil {
			r.clearMatched()
		}
	}()

	res = Result{Move: r.move, Outcome: ir.MoveAborted}
	set, err := r.refillPhases(ctx, 0, &res)
	if err != nil {
		return res, err
	}
	if err := r.cascade(ctx, set, nil, &res); err != nil {
		return res, err
	}
	res.Accepted = res.Passes > 0
	res.Outcome = ir.MoveResolved
	return res, nil
}

// clearMatched drops Matched flags left by an abandoned cascade.
func (r *Resolver) clearMatched() {
	for _, p := range r.grid.Pieces() {
		p.Matched = false
	}
}

func (r *Resolver) validateSwap(a, b board.Coord) (*board.Piece, *board.Piece, error) {
	pa, err := r.grid.Get(a.Col, a.Row)
	if err != nil {
		return nil, nil, err
	}
	pb, err := r.grid.Get(b.Col, b.Row)
	if err != nil {
		return nil, nil, err
	}
	details := map[string]string{"a": a.String(), "b": b.String()}
	switch {
	case a == b:
		return nil, nil, NewInvalidSwapError("same slot", details)
	case !a.Adjacent(b):
		return nil, nil, NewInvalidSwapError("not adjacent", details)
	case pa == nil || pb == nil:
		return nil, nil, NewInvalidSwapError("empty slot", details)
	case !r.settled():
		return nil, nil, NewInvalidSwapError("board not settled", details)
	}
	return pa, pb, nil
}

// settled reports whether the board is full and holds no match. Only a
// settled board accepts swaps.
func (r *Resolver) settled() bool {
	return len(r.grid.Empties()) == 0 && r.detector.Scan(r.grid).Empty()
}

func rejectReason(err error) string {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Message
	}
	if board.IsOutOfBounds(err) {
		return "out of bounds"
	}
	return err.Error()
}

// cascade runs destroy passes until set is empty, then marks the board
// settled. current is the swapped piece, nil when there was no swap.
func (r *Resolver) cascade(ctx context.Context, set match.Set, current *board.Piece, res *Result) error {
	quota := NewQuotaEnforcer(r.maxPasses)
	pairEpoch := r.epoch

	for !set.Empty() {
		if err := quota.Check(r.gameID); err != nil {
			r.logger.Error("cascade pass quota exceeded",
				"game", r.gameID,
				"move", r.move,
				"passes", quota.Current(),
				"limit", quota.MaxPasses(),
				"error", err,
			)
			return NewCascadeLimitError(r.gameID, r.move, quota.Current(), quota.MaxPasses())
		}
		pass := quota.Current()
		res.Passes = pass

		if err := r.destroy(ctx, pass, set, current, pairEpoch, res); err != nil {
			return err
		}
		if current != nil {
			// The pair only means something for the match the swap made.
			r.epoch++
			current = nil
		}

		var err error
		if set, err = r.refillPhases(ctx, pass, res); err != nil {
			return err
		}
	}

	r.generation.Add(1)
	hash, err := HashBoard(r.grid)
	if err != nil {
		return err
	}
	r.logger.Info("cascade settled",
		"game", r.gameID,
		"move", r.move,
		"passes", res.Passes,
		"removed", res.Removed,
		"created", res.Created,
	)
	return r.emit(ctx, 0, ir.EventSettled, ir.Object{
		"passes":     ir.Int(res.Passes),
		"removed":    ir.Int(res.Removed),
		"created":    ir.Int(res.Created),
		"board_hash": ir.String(hash),
	})
}

// destroy runs the promotion policy once and removes every piece still
// matched, in column-major order.
func (r *Resolver) destroy(ctx context.Context, pass int, set match.Set, current *board.Piece, epoch uint64, res *Result) error {
	if set.Len() >= r.policy.Config().MinSize {
		out, err := r.policy.Apply(r.grid, set, current, epoch)
		if err != nil {
			if board.IsStalePiece(err) {
				return NewStalePieceError(r.gameID, r.move, err)
			}
			return fmt.Errorf("promotion: %w", err)
		}
		if out.Hooked {
			res.LargeMatches = append(res.LargeMatches, set.Len())
			if err := r.emit(ctx, pass, ir.EventLargeMatch, ir.Object{"count": ir.Int(set.Len())}); err != nil {
				return err
			}
		}
		if out.Promoted != nil {
			res.Promotions = append(res.Promotions, Promotion{Pass: pass, At: out.At, Special: out.Special})
			r.logger.Debug("piece promoted", "game", r.gameID, "pass", pass, "at", out.At, "special", out.Special)
			if err := r.emit(ctx, pass, ir.EventPromoted, ir.Object{
				"at":      ir.Coord(out.At.Col, out.At.Row),
				"kind":    ir.String(out.Promoted.Kind.String()),
				"special": ir.String(out.Special.String()),
				"line":    ir.Bool(out.Line),
			}); err != nil {
				return err
			}
		}
	}

	removed := 0
	for _, c := range set.Coords() {
		p, err := r.grid.Get(c.Col, c.Row)
		if err != nil {
			return err
		}
		if p == nil {
			return NewDesyncError(r.gameID, r.move, c.String())
		}
		if !p.Matched {
			continue
		}
		r.hooks.OnPieceRemoved(c.Col, c.Row, p.Kind)
		if _, err := r.grid.Clear(c.Col, c.Row); err != nil {
			return err
		}
		p.Matched = false
		removed++
		if err := r.emit(ctx, pass, ir.EventPieceRemoved, ir.Object{
			"at":      ir.Coord(c.Col, c.Row),
			"kind":    ir.String(p.Kind.String()),
			"special": ir.String(p.Special.String()),
		}); err != nil {
			return err
		}
	}
	res.Removed += removed
	r.logger.Debug("destroy pass", "game", r.gameID, "move", r.move, "pass", pass, "removed", removed)
	return r.scheduler.Sleep(ctx, AfterDestroy, r.delays.AfterDestroy)
}

// refillPhases collapses, refills and re-scans, returning the new (already
// marked) match set.
func (r *Resolver) refillPhases(ctx context.Context, pass int, res *Result) (match.Set, error) {
	if err := r.collapse(ctx, pass); err != nil {
		return match.Set{}, err
	}
	if err := r.scheduler.Sleep(ctx, AfterCollapse, r.delays.AfterCollapse); err != nil {
		return match.Set{}, err
	}
	created, err := r.refill(ctx, pass)
	if err != nil {
		return match.Set{}, err
	}
	res.Created += created
	if err := r.scheduler.Sleep(ctx, AfterRefill, r.delays.AfterRefill); err != nil {
		return match.Set{}, err
	}

	set := r.detector.Scan(r.grid)
	if missing := match.Mark(r.grid, set); len(missing) > 0 {
		return match.Set{}, NewDesyncError(r.gameID, r.move, missing[0].String())
	}
	if err := r.emit(ctx, pass, ir.EventPassCompleted, ir.Object{
		"created": ir.Int(created),
		"matched": ir.Int(set.Len()),
	}); err != nil {
		return match.Set{}, err
	}
	return set, nil
}

// collapse shifts each column's pieces down over the empty slots below them,
// preserving their order.
func (r *Resolver) collapse(ctx context.Context, pass int) error {
	moves := ir.Array{}
	for col := 0; col < r.grid.Width(); col++ {
		empties := 0
		for row := 0; row < r.grid.Height(); row++ {
			p, err := r.grid.Get(col, row)
			if err != nil {
				return err
			}
			if p == nil {
				empties++
				continue
			}
			if empties == 0 {
				continue
			}
			from := board.Coord{Col: col, Row: row}
			to := board.Coord{Col: col, Row: row - empties}
			if err := r.grid.Move(from, to); err != nil {
				return fmt.Errorf("collapse: %w", err)
			}
			moves = append(moves, ir.Object{
				"from": ir.Coord(from.Col, from.Row),
				"to":   ir.Coord(to.Col, to.Row),
			})
		}
	}
	return r.emit(ctx, pass, ir.EventCollapsed, ir.Object{"moves": moves})
}

// refill places a uniformly random kind in every empty slot, column-major.
// Unlike initial fill it does not resample to avoid matches.
func (r *Resolver) refill(ctx context.Context, pass int) (int, error) {
	created := 0
	for _, c := range r.grid.Empties() {
		kind := board.Kind(r.source.IntN(r.kinds))
		if err := r.grid.Set(c.Col, c.Row, board.NewPiece(kind)); err != nil {
			return created, fmt.Errorf("refill: %w", err)
		}
		r.hooks.OnPieceCreated(c.Col, c.Row, kind, board.SpecialNone)
		created++
		if err := r.emit(ctx, pass, ir.EventPieceCreated, ir.Object{
			"at":   ir.Coord(c.Col, c.Row),
			"kind": ir.String(kind.String()),
		}); err != nil {
			return created, err
		}
	}
	return created, nil
}

// emit stamps and records one event.
func (r *Resolver) emit(ctx context.Context, pass int, typ ir.EventType, payload ir.Object) error {
	seq := r.clock.Next()
	if r.recorder == nil {
		return nil
	}
	id, err := ir.EventID(r.gameID, seq, r.move, pass, typ, payload)
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	ev := ir.Event{
		ID:      id,
		GameID:  r.gameID,
		Seq:     seq,
		Move:    r.move,
		Pass:    pass,
		Type:    typ,
		Payload: payload,
	}
	if err := r.recorder.Record(ctx, ev); err != nil {
		return fmt.Errorf("record %s: %w", typ, err)
	}
	return nil
}
