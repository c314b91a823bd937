package board

import (
	"errors"
	"fmt"
)

var (
	// ErrSameSlot is returned by Swap when both endpoints name the same slot.
	ErrSameSlot = errors.New("board: swap endpoints must differ")

	// ErrSlotOccupied is returned by Move when the destination is not empty.
	ErrSlotOccupied = errors.New("board: destination slot is occupied")

	// ErrPieceResident is returned by Set when the piece already lives in a
	// different slot of the same grid.
	ErrPieceResident = errors.New("board: piece already resident in another slot")

	// ErrInvalidDimensions is returned by NewGrid for non-positive sizes.
	ErrInvalidDimensions = errors.New("board: width and height must be positive")
)

// OutOfBoundsError reports an access outside [0,width) x [0,height).
type OutOfBoundsError struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// Error implements the error interface.
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("board: (%d,%d) out of bounds for %dx%d grid", e.Col, e.Row, e.Width, e.Height)
}

// IsOutOfBounds returns true if err is or wraps an *OutOfBoundsError.
func IsOutOfBounds(err error) bool {
	var oob *OutOfBoundsError
	return errors.As(err, &oob)
}

// StalePieceError reports a pair link read after the epoch that created it.
//
// Reading a stale pair is a programming error in the caller: the link only
// means something during the resolution cycle of the swap that made it.
type StalePieceError struct {
	At        Coord  // coordinate of the piece whose link was read
	LinkEpoch uint64 // epoch the link was created in
	Epoch     uint64 // epoch the caller asked for
}

// Error implements the error interface.
func (e *StalePieceError) Error() string {
	return fmt.Sprintf("board: stale pair reference on piece at %s (linked in epoch %d, read in epoch %d)",
		e.At, e.LinkEpoch, e.Epoch)
}

// IsStalePiece returns true if err is or wraps a *StalePieceError.
func IsStalePiece(err error) bool {
	var se *StalePieceError
	return errors.As(err, &se)
}
