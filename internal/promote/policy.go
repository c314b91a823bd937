// Package promote decides when a completed match turns one of its pieces into
// a special piece instead of destroying it.
//
// The decision has three steps:
//  1. Shape: ColumnOrRow reports whether the match is a straight line.
//  2. Candidate: the piece the player moved if it is matched, otherwise the
//     piece it was swapped with if that one is matched.
//  3. Promotion: a line makes a ColorBomb, anything else an AdjacentBomb.
//     The candidate's Matched flag is cleared, which is what spares it from
//     the destroy phase that follows.
//
// Only configured match sizes promote. With the default configuration sizes 5
// and 8 promote, sizes 4 and 7 fire the large-match hook, and size 6 does
// neither.
package promote

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/match"
)

// ErrCandidateDetached is returned when the promotion candidate is no longer
// resident in the grid slot its coordinates name.
var ErrCandidateDetached = errors.New("promote: candidate piece is not resident on the grid")

// Config controls which matches are considered and how lines are recognised.
type Config struct {
	// MinSize is the smallest match the policy is invoked for.
	MinSize int

	// LineLength is the per-row or per-column count that makes a match a
	// line. Zero means "the whole match lies on one row or column".
	LineLength int

	// PromoteSizes lists match sizes that create a special piece.
	PromoteSizes []int

	// HookSizes lists match sizes that fire the large-match hook.
	HookSizes []int
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		MinSize:      4,
		LineLength:   5,
		PromoteSizes: []int{5, 8},
		HookSizes:    []int{4, 7},
	}
}

// LargeMatchHook is notified of large matches before any piece is destroyed.
// What it does with them (checking bombs already on the board) is outside
// this package.
type LargeMatchHook interface {
	OnLargeMatch(count int)
}

// Outcome describes what one Apply call did.
type Outcome struct {
	Invoked  bool          // match size reached MinSize
	Hooked   bool          // large-match hook fired
	Line     bool          // ColumnOrRow result (only computed for promote sizes)
	Promoted *board.Piece  // the promoted piece, nil if none
	Special  board.Special // variant given to Promoted
	At       board.Coord   // slot of Promoted
}

// Policy applies the promotion rules. It holds no per-cascade state.
type Policy struct {
	cfg  Config
	hook LargeMatchHook
}

// New creates a Policy. hook may be nil.
func New(cfg Config, hook LargeMatchHook) *Policy {
	return &Policy{cfg: cfg, hook: hook}
}

// Config returns the policy configuration.
func (p *Policy) Config() Config {
	return p.cfg
}

// ColumnOrRow reports whether s is a straight line.
//
// It counts coordinates sharing the first coordinate's row and, separately,
// its column, and compares each count against the line length.
func (p *Policy) ColumnOrRow(s match.Set) bool {
	first, ok := s.First()
	if !ok {
		return false
	}
	horizontal, vertical := 0, 0
	for _, c := range s.Coords() {
		if c.Row == first.Row {
			horizontal++
		}
		if c.Col == first.Col {
			vertical++
		}
	}
	target := p.cfg.LineLength
	if target == 0 {
		target = s.Len()
	}
	return horizontal == target || vertical == target
}

// Apply runs the policy once for the pending match s.
//
// current is the piece the player moved, or nil when the match was not
// produced by a swap (cascade chains). epoch is the pair epoch used to reach
// current's partner.
func (p *Policy) Apply(g *board.Grid, s match.Set, current *board.Piece, epoch uint64) (Outcome, error) {
	var out Outcome
	count := s.Len()
	if count < p.cfg.MinSize {
		return out, nil
	}
	out.Invoked = true

	if slices.Contains(p.cfg.HookSizes, count) && p.hook != nil {
		p.hook.OnLargeMatch(count)
		out.Hooked = true
	}

	if !slices.Contains(p.cfg.PromoteSizes, count) {
		return out, nil
	}
	out.Line = p.ColumnOrRow(s)

	candidate, err := selectCandidate(current, epoch)
	if err != nil {
		return out, err
	}
	if candidate == nil {
		return out, nil
	}
	resident, err := g.Get(candidate.Column, candidate.Row)
	if err != nil {
		return out, fmt.Errorf("promote: candidate: %w", err)
	}
	if resident != candidate {
		return out, fmt.Errorf("%w: at %s", ErrCandidateDetached, candidate.Coord())
	}

	want := board.AdjacentBomb
	if out.Line {
		want = board.ColorBomb
	}
	if candidate.Special == want {
		return out, nil
	}
	candidate.Matched = false
	candidate.Special = want

	out.Promoted = candidate
	out.Special = want
	out.At = candidate.Coord()
	return out, nil
}

// selectCandidate picks current if matched, else its partner if matched.
func selectCandidate(current *board.Piece, epoch uint64) (*board.Piece, error) {
	if current == nil {
		return nil, nil
	}
	if current.Matched {
		return current, nil
	}
	other, err := current.Paired(epoch)
	if err != nil {
		return nil, err
	}
	if other != nil && other.Matched {
		return other, nil
	}
	return nil, nil
}
