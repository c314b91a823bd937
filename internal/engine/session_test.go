package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
)

const waitFor = 2 * time.Second

func startSession(t *testing.T, s *engine.Session) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		done <- s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-exited
	})
	return cancel, done
}

func await(t *testing.T, ch <-chan engine.SwapReply) engine.SwapReply {
	t.Helper()
	select {
	case reply := <-ch:
		return reply
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for reply")
		return engine.SwapReply{}
	}
}

func TestSession_ResolvesSubmittedSwap(t *testing.T) {
	f := newFixture(t, threeInARow, 4, []int{0, 1, 0})

	var mu sync.Mutex
	var observed []engine.Snapshot
	s := engine.NewSession(f.r,
		engine.WithSessionLogger(quietLogger()),
		engine.WithMoveFunc(func(_ engine.SwapRequest, _ engine.SwapReply, after engine.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			observed = append(observed, after)
		}),
	)
	startSession(t, s)

	ch, err := s.Submit(engine.SwapRequest{A: c(2, 0), B: c(3, 0), Generation: f.r.Generation()})
	require.NoError(t, err)
	reply := await(t, ch)
	require.NoError(t, reply.Err)
	assert.Equal(t, ir.MoveResolved, reply.Result.Outcome)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ABAD", "CDCC", "DCDB"}, snap.Rows)
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Equal(t, "ready_for_input", snap.State)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, observed, 1)
	assert.Equal(t, snap.Rows, observed[0].Rows)
}

func TestSession_DropsStaleRequest(t *testing.T) {
	f := newFixture(t, threeInARow, 4, []int{0, 1, 0})
	s := engine.NewSession(f.r, engine.WithSessionLogger(quietLogger()))
	startSession(t, s)

	before := f.r.Grid().Layout()
	ch, err := s.Submit(engine.SwapRequest{A: c(2, 0), B: c(3, 0), Generation: f.r.Generation() + 5})
	require.NoError(t, err)
	reply := await(t, ch)
	assert.ErrorIs(t, reply.Err, engine.ErrStaleRequest)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, snap.Rows, "stale request must not touch the board")
	assert.Equal(t, int64(0), snap.Moves)
}

func TestSession_ReportsFailedSwap(t *testing.T) {
	f := newFixture(t, threeInARow, 4, nil)
	s := engine.NewSession(f.r, engine.WithSessionLogger(quietLogger()))
	startSession(t, s)

	ch, err := s.Submit(engine.SwapRequest{A: c(0, 0), B: c(2, 2)})
	require.NoError(t, err)
	reply := await(t, ch)
	assert.True(t, engine.IsInvalidSwap(reply.Err))
	assert.Equal(t, ir.MoveRejected, reply.Result.Outcome)

	// The loop keeps serving after a failure.
	ch, err = s.Submit(engine.SwapRequest{A: c(0, 0), B: c(1, 0)})
	require.NoError(t, err)
	reply = await(t, ch)
	require.NoError(t, reply.Err)
	assert.Equal(t, ir.MoveReverted, reply.Result.Outcome)
}

func TestSession_StopAndClose(t *testing.T) {
	f := newFixture(t, threeInARow, 4, nil)
	s := engine.NewSession(f.r, engine.WithSessionLogger(quietLogger()))
	_, done := startSession(t, s)

	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after Stop")
	}

	_, err := s.Submit(engine.SwapRequest{A: c(0, 0), B: c(1, 0)})
	assert.ErrorIs(t, err, engine.ErrSessionClosed)
	_, err = s.Snapshot(context.Background())
	assert.ErrorIs(t, err, engine.ErrSessionClosed)
}

func TestSession_ContextCancel(t *testing.T) {
	f := newFixture(t, threeInARow, 4, nil)
	s := engine.NewSession(f.r, engine.WithSessionLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after cancel")
	}
}
