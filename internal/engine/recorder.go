package engine

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/roach88/tilematch/internal/ir"
)

// Recorder receives every event the resolver emits, in sequence order.
// A Recorder error aborts the move.
type Recorder interface {
	Record(ctx context.Context, ev ir.Event) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, ev ir.Event) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, ev ir.Event) error {
	return f(ctx, ev)
}

// MultiRecorder fans events out to several recorders in order. All recorders
// are called; their errors are joined.
func MultiRecorder(recs ...Recorder) Recorder {
	recs = slices.DeleteFunc(slices.Clone(recs), func(r Recorder) bool { return r == nil })
	return RecorderFunc(func(ctx context.Context, ev ir.Event) error {
		var errs []error
		for _, r := range recs {
			if err := r.Record(ctx, ev); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// MemoryRecorder keeps events in memory.
//
// Thread-safety: MemoryRecorder is safe for concurrent use.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []ir.Event
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends ev.
func (m *MemoryRecorder) Record(_ context.Context, ev ir.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (m *MemoryRecorder) Events() []ir.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// Types returns the recorded event types in order.
func (m *MemoryRecorder) Types() []ir.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ir.EventType, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Type
	}
	return out
}

// Reset drops all recorded events.
func (m *MemoryRecorder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
