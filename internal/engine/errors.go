package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a failure detected while resolving a move.
//
// Runtime errors include:
//   - Invalid swap: wrong state, non-adjacent or empty slot
//   - Detector desync: a matched coordinate holds no piece
//   - Cascade limit: a cascade ran more passes than allowed
//   - Stale piece: a swap pair link was used after its cascade
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// GameID identifies the affected game, if known.
	GameID string

	// Move is the move number being resolved.
	Move int64

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvalidSwap indicates a swap was rejected without mutation.
	ErrCodeInvalidSwap RuntimeErrorCode = "INVALID_SWAP"

	// ErrCodeDetectorDesync indicates the detector reported an empty slot.
	ErrCodeDetectorDesync RuntimeErrorCode = "DETECTOR_DESYNC"

	// ErrCodeCascadeLimit indicates the cascade exceeded max passes.
	ErrCodeCascadeLimit RuntimeErrorCode = "CASCADE_LIMIT"

	// ErrCodeStalePiece indicates a pair link outlived its cascade.
	ErrCodeStalePiece RuntimeErrorCode = "STALE_PIECE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.GameID != "" {
		return fmt.Sprintf("%s: %s (game=%s, move=%d)", e.Code, e.Message, e.GameID, e.Move)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsInvalidSwap reports whether err is an invalid swap rejection.
func IsInvalidSwap(err error) bool { return hasCode(err, ErrCodeInvalidSwap) }

// IsDesync reports whether err is a detector/resolver desync.
func IsDesync(err error) bool { return hasCode(err, ErrCodeDetectorDesync) }

// IsStalePiece reports whether err is a stale pair reference.
func IsStalePiece(err error) bool { return hasCode(err, ErrCodeStalePiece) }

// IsCascadeLimit reports whether err is a cascade limit error.
// Matches both RuntimeError with ErrCodeCascadeLimit and PassesExceededError.
func IsCascadeLimit(err error) bool {
	if hasCode(err, ErrCodeCascadeLimit) {
		return true
	}
	var pe *PassesExceededError
	return errors.As(err, &pe)
}

// NewInvalidSwapError creates a RuntimeError for a rejected swap.
func NewInvalidSwapError(reason string, details map[string]string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidSwap,
		Message: reason,
		Details: details,
	}
}

// NewDesyncError creates a RuntimeError for a matched coordinate with no piece.
func NewDesyncError(gameID string, move int64, at string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeDetectorDesync,
		Message: "matched coordinate holds no piece",
		GameID:  gameID,
		Move:    move,
		Details: map[string]string{"at": at},
	}
}

// NewCascadeLimitError creates a RuntimeError for a runaway cascade.
func NewCascadeLimitError(gameID string, move int64, passes, maxPasses int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCascadeLimit,
		Message: fmt.Sprintf("cascade exceeded max passes (%d > %d)", passes, maxPasses),
		GameID:  gameID,
		Move:    move,
		Details: map[string]string{
			"passes":     fmt.Sprintf("%d", passes),
			"max_passes": fmt.Sprintf("%d", maxPasses),
		},
	}
}

// NewStalePieceError wraps a stale pair access.
func NewStalePieceError(gameID string, move int64, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStalePiece,
		Message: cause.Error(),
		GameID:  gameID,
		Move:    move,
	}
}
