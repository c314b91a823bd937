package engine

import "sync/atomic"

// Clock is the logical clock that stamps events.
//
// Every recorded event takes the next value. Replay of the same moves takes
// the same values, which is what keeps event IDs stable.
//
// Clock is safe for concurrent use, though only the resolver goroutine
// normally calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at start. The first Next returns
// start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
