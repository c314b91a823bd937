package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/roach88/tilematch/internal/engine"
)

// RecordingScheduler never waits and records each suspension point with the
// delay it was asked for.
type RecordingScheduler struct {
	mu     sync.Mutex
	points []engine.SuspendPoint
	delays []time.Duration
}

// Sleep records the call and returns ctx.Err().
func (s *RecordingScheduler) Sleep(ctx context.Context, p engine.SuspendPoint, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, p)
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// Points returns the recorded suspension points in order.
func (s *RecordingScheduler) Points() []engine.SuspendPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]engine.SuspendPoint(nil), s.points...)
}

// Delays returns the recorded delays in order.
func (s *RecordingScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// GateScheduler parks the cascade at every suspension point until the test
// releases it, so the test can observe the resolver mid-cascade.
type GateScheduler struct {
	reached chan engine.SuspendPoint
	release chan struct{}
}

// NewGateScheduler creates a closed gate.
func NewGateScheduler() *GateScheduler {
	return &GateScheduler{
		reached: make(chan engine.SuspendPoint),
		release: make(chan struct{}),
	}
}

// Sleep announces p on Reached and blocks until Release or ctx is done.
func (g *GateScheduler) Sleep(ctx context.Context, p engine.SuspendPoint, _ time.Duration) error {
	select {
	case g.reached <- p:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reached delivers each suspension point as the cascade parks on it.
func (g *GateScheduler) Reached() <-chan engine.SuspendPoint {
	return g.reached
}

// Release lets the parked cascade continue past one suspension point.
func (g *GateScheduler) Release() {
	g.release <- struct{}{}
}
