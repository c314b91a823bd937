package engine

import (
	"context"
	"time"
)

// SuspendPoint names a pause between cascade phases.
type SuspendPoint string

const (
	AfterDestroy  SuspendPoint = "after_destroy"
	AfterCollapse SuspendPoint = "after_collapse"
	AfterRefill   SuspendPoint = "after_refill"
)

// Delays holds the pause at each suspension point.
type Delays struct {
	AfterDestroy  time.Duration
	AfterCollapse time.Duration
	AfterRefill   time.Duration
}

// DefaultDelays are the pacing values the board animates at.
func DefaultDelays() Delays {
	return Delays{
		AfterDestroy:  200 * time.Millisecond,
		AfterCollapse: 400 * time.Millisecond,
		AfterRefill:   200 * time.Millisecond,
	}
}

// For returns the delay configured for p.
func (d Delays) For(p SuspendPoint) time.Duration {
	switch p {
	case AfterDestroy:
		return d.AfterDestroy
	case AfterCollapse:
		return d.AfterCollapse
	case AfterRefill:
		return d.AfterRefill
	}
	return 0
}

// Scheduler suspends the cascade at a named point. It must return ctx.Err()
// once ctx is done; the resolver then abandons the cascade.
type Scheduler interface {
	Sleep(ctx context.Context, point SuspendPoint, d time.Duration) error
}

// TimerScheduler waits in real time.
type TimerScheduler struct{}

// Sleep blocks for d or until ctx is done.
func (TimerScheduler) Sleep(ctx context.Context, _ SuspendPoint, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ImmediateScheduler never waits. Used for command-line moves and replay,
// where nothing animates.
type ImmediateScheduler struct{}

// Sleep only checks for cancellation.
func (ImmediateScheduler) Sleep(ctx context.Context, _ SuspendPoint, _ time.Duration) error {
	return ctx.Err()
}
