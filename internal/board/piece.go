package board

import "fmt"

// Kind identifies a piece color. Kinds are dense integers starting at 0.
type Kind int

// MaxKinds is the largest number of kinds a board can use. Kinds are written
// as the letters A-Z in layouts.
const MaxKinds = 26

// Letter returns the layout letter for k ('A' for kind 0).
func (k Kind) Letter() byte {
	return byte('A' + int(k))
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || k >= MaxKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return string(k.Letter())
}

// Special is the special-piece variant of a piece.
type Special int

const (
	// SpecialNone is an ordinary piece.
	SpecialNone Special = iota
	// ColorBomb is created from a straight line match.
	ColorBomb
	// AdjacentBomb is created from a clustered (non-line) match.
	AdjacentBomb
)

// String returns the wire name of the variant.
func (s Special) String() string {
	switch s {
	case SpecialNone:
		return "none"
	case ColorBomb:
		return "color_bomb"
	case AdjacentBomb:
		return "adjacent_bomb"
	default:
		return fmt.Sprintf("Special(%d)", int(s))
	}
}

// ParseSpecial parses a wire name produced by Special.String.
func ParseSpecial(s string) (Special, error) {
	switch s {
	case "none", "":
		return SpecialNone, nil
	case "color_bomb":
		return ColorBomb, nil
	case "adjacent_bomb":
		return AdjacentBomb, nil
	default:
		return SpecialNone, fmt.Errorf("board: unknown special %q", s)
	}
}

// Piece is a single grid-resident unit.
//
// Column and Row mirror the slot the piece occupies and are maintained by
// Grid. Matched is the transient flag set by the resolver for the pending
// match; it must be false again once a destroy phase ends.
type Piece struct {
	Kind    Kind
	Column  int
	Row     int
	Matched bool
	Special Special

	paired    *Piece
	pairEpoch uint64
}

// NewPiece returns an ordinary, unplaced piece of the given kind.
func NewPiece(kind Kind) *Piece {
	return &Piece{Kind: kind}
}

// Coord returns the piece's current slot.
func (p *Piece) Coord() Coord {
	return Coord{Col: p.Column, Row: p.Row}
}

// Link pairs a and b for the given epoch. Each piece can then reach the other
// through Paired until the epoch changes.
func Link(a, b *Piece, epoch uint64) {
	a.paired, a.pairEpoch = b, epoch
	b.paired, b.pairEpoch = a, epoch
}

// Unlink drops the pair reference held by p (not by its partner).
func (p *Piece) Unlink() {
	p.paired = nil
	p.pairEpoch = 0
}

// Paired returns the piece p was linked with in epoch.
//
// Returns (nil, nil) when p has no link. Returns *StalePieceError when the
// link was created in a different epoch.
func (p *Piece) Paired(epoch uint64) (*Piece, error) {
	if p.paired == nil {
		return nil, nil
	}
	if p.pairEpoch != epoch {
		return nil, &StalePieceError{At: p.Coord(), LinkEpoch: p.pairEpoch, Epoch: epoch}
	}
	return p.paired, nil
}
