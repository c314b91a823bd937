package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/tilematch/internal/board"
)

var (
	// ErrBusy is returned by Submit while a cascade is resolving.
	ErrBusy = errors.New("engine: board is resolving a cascade")

	// ErrStaleRequest is the reply to a request built against an earlier
	// board generation. The request is dropped without touching the board.
	ErrStaleRequest = errors.New("engine: request targets an earlier board")

	// ErrSessionClosed is returned once the session has stopped.
	ErrSessionClosed = errors.New("engine: session closed")
)

// SwapRequest asks the session to swap A and B.
type SwapRequest struct {
	A board.Coord
	B board.Coord

	// Generation is the board generation the request was built against.
	// Zero skips the staleness check.
	Generation uint64
}

// SwapReply is the answer to one SwapRequest.
type SwapReply struct {
	Result Result
	Err    error
}

// MoveFunc observes each processed request from the loop goroutine, with a
// snapshot taken after the move.
type MoveFunc func(req SwapRequest, reply SwapReply, after Snapshot)

// Session is the single-writer loop in front of a Resolver.
//
// Thread-safety model:
//   - Submit(), Snapshot(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// Requests submitted while the resolver is Waiting are rejected with
// ErrBusy. Requests that were accepted but whose generation is stale by the
// time they are dequeued are dropped with ErrStaleRequest.
type Session struct {
	resolver *Resolver
	queue    *requestQueue
	logger   *slog.Logger
	onMove   MoveFunc
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger. Default: slog.Default().
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithMoveFunc registers an observer for processed requests.
func WithMoveFunc(fn MoveFunc) SessionOption {
	return func(s *Session) { s.onMove = fn }
}

// NewSession wraps r.
func NewSession(r *Resolver, opts ...SessionOption) *Session {
	s := &Session{
		resolver: r,
		queue:    newRequestQueue(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the wrapped resolver.
func (s *Session) Resolver() *Resolver {
	return s.resolver
}

// Submit enqueues a swap. The returned channel receives exactly one reply.
func (s *Session) Submit(req SwapRequest) (<-chan SwapReply, error) {
	if s.resolver.State() == Waiting {
		return nil, ErrBusy
	}
	reply := make(chan SwapReply, 1)
	if !s.queue.Enqueue(request{swap: req, reply: reply}) {
		return nil, ErrSessionClosed
	}
	return reply, nil
}

// Snapshot asks the loop for a board snapshot taken between moves.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	ch := make(chan Snapshot, 1)
	if !s.queue.Enqueue(request{snapshot: ch}) {
		return Snapshot{}, ErrSessionClosed
	}
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case snap, ok := <-ch:
		if !ok {
			return Snapshot{}, ErrSessionClosed
		}
		return snap, nil
	}
}

// Run starts the loop. It blocks until ctx is cancelled or Stop is called.
// Requests still queued on exit are answered with ErrSessionClosed.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// A failed move is logged and the loop continues; the resolver is back in
// ReadyForInput after every call.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session starting", "game", s.resolver.GameID())
	defer s.drain()

	for {
		if req, ok := s.queue.TryDequeue(); ok {
			s.process(ctx, req)
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Info("session stopping: context cancelled", "game", s.resolver.GameID())
			s.queue.Close()
			return ctx.Err()

		case _, open := <-s.queue.Wait():
			// Close closes the signal channel; a plain signal just loops
			// back to TryDequeue.
			if !open && s.queue.Len() == 0 {
				s.logger.Info("session stopping: queue closed", "game", s.resolver.GameID())
				return nil
			}
		}
	}
}

// Stop closes the queue, which makes Run return.
func (s *Session) Stop() {
	s.queue.Close()
}

// process handles one request. Called only from Run.
func (s *Session) process(ctx context.Context, req request) {
	if req.snapshot != nil {
		req.snapshot <- s.resolver.Snapshot()
		return
	}

	sw := req.swap
	if sw.Generation != 0 && sw.Generation != s.resolver.Generation() {
		s.logger.Debug("dropping stale swap request",
			"game", s.resolver.GameID(),
			"request_generation", sw.Generation,
			"generation", s.resolver.Generation(),
		)
		s.answer(req, SwapReply{Err: ErrStaleRequest})
		return
	}

	res, err := s.resolver.AttemptSwap(ctx, sw.A, sw.B)
	if err != nil {
		s.logger.Warn("swap failed",
			"game", s.resolver.GameID(),
			"move", res.Move,
			"a", sw.A,
			"b", sw.B,
			"error", err,
		)
	}
	s.answer(req, SwapReply{Result: res, Err: err})
}

func (s *Session) answer(req request, reply SwapReply) {
	req.reply <- reply
	if s.onMove != nil {
		s.onMove(req.swap, reply, s.resolver.Snapshot())
	}
}

func (s *Session) drain() {
	for _, req := range s.queue.Drain() {
		if req.snapshot != nil {
			close(req.snapshot)
			continue
		}
		req.reply <- SwapReply{Err: ErrSessionClosed}
	}
}
