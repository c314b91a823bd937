package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxPasses bounds destroy passes per cascade. Real cascades end in a
// handful of passes; the cap only exists to turn a pathological kind source
// into an error instead of a hang.
const DefaultMaxPasses = 1000

// QuotaEnforcer counts destroy passes for one cascade and enforces the cap.
// A fresh enforcer is created per cascade.
type QuotaEnforcer struct {
	maxPasses int
	current   int
}

// NewQuotaEnforcer creates an enforcer with the given limit.
func NewQuotaEnforcer(maxPasses int) *QuotaEnforcer {
	return &QuotaEnforcer{maxPasses: maxPasses}
}

// Check increments the pass counter and validates it against the limit.
// Call it before each destroy pass.
func (q *QuotaEnforcer) Check(gameID string) error {
	q.current++
	if q.current > q.maxPasses {
		return &PassesExceededError{
			GameID: gameID,
			Passes: q.current,
			Limit:  q.maxPasses,
		}
	}
	return nil
}

// Current returns the number of passes counted so far.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxPasses returns the limit.
func (q *QuotaEnforcer) MaxPasses() int {
	return q.maxPasses
}

// PassesExceededError is returned when a cascade exceeds its pass quota.
type PassesExceededError struct {
	GameID string
	Passes int
	Limit  int
}

// Error implements the error interface.
func (e *PassesExceededError) Error() string {
	return fmt.Sprintf("game %s exceeded cascade pass quota: %d passes > %d limit",
		e.GameID, e.Passes, e.Limit)
}

// IsPassesExceededError reports whether err is a PassesExceededError.
func IsPassesExceededError(err error) bool {
	var pe *PassesExceededError
	return errors.As(err, &pe)
}
