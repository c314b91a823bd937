// Package match finds runs of three or more same-kind pieces on a grid.
//
// Detection is a local three-window test: for each occupied cell, the two
// cells before it in its row and the two cells before it in its column are
// compared with it. Longer runs are reported in full because every interior
// cell satisfies the test on its own window.
//
// Scan never mutates pieces. Callers decide when to mark Matched.
package match

import (
	"cmp"
	"slices"

	"github.com/roach88/tilematch/internal/board"
)

// Set is the ordered collection of coordinates found by one Scan.
//
// Coordinates are unique and ordered column-major (column ascending, then
// row ascending), matching the order the resolver destroys pieces in.
type Set struct {
	coords []board.Coord
	index  map[board.Coord]struct{}
}

// NewSet builds a Set from coordinates, dropping duplicates and sorting them
// column-major.
func NewSet(coords ...board.Coord) Set {
	marked := make(map[board.Coord]struct{}, len(coords))
	for _, c := range coords {
		marked[c] = struct{}{}
	}
	return fromMarks(marked, nil)
}

func fromMarks(marked map[board.Coord]struct{}, g *board.Grid) Set {
	s := Set{index: marked}
	if len(marked) == 0 {
		return s
	}
	if g != nil {
		for c := range g.Pieces() {
			if _, ok := marked[c]; ok {
				s.coords = append(s.coords, c)
			}
		}
		return s
	}
	s.coords = make([]board.Coord, 0, len(marked))
	for c := range marked {
		s.coords = append(s.coords, c)
	}
	slices.SortFunc(s.coords, compareColumnMajor)
	return s
}

func compareColumnMajor(a, b board.Coord) int {
	if a.Col != b.Col {
		return cmp.Compare(a.Col, b.Col)
	}
	return cmp.Compare(a.Row, b.Row)
}

// Len returns the number of matched coordinates.
func (s Set) Len() int { return len(s.coords) }

// Empty reports whether no match was found.
func (s Set) Empty() bool { return len(s.coords) == 0 }

// Coords returns the matched coordinates in column-major order.
// The returned slice must not be modified.
func (s Set) Coords() []board.Coord { return s.coords }

// Contains reports whether c is part of the set.
func (s Set) Contains(c board.Coord) bool {
	_, ok := s.index[c]
	return ok
}

// First returns the first coordinate in set order.
func (s Set) First() (board.Coord, bool) {
	if len(s.coords) == 0 {
		return board.Coord{}, false
	}
	return s.coords[0], true
}

// Detector scans grids for matches. The zero value is ready to use.
type Detector struct{}

// NewDetector returns a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Scan returns every coordinate that is part of a horizontal or vertical run
// of at least three same-kind pieces. It is a pure function of g.
func (d *Detector) Scan(g *board.Grid) Set {
	marked := make(map[board.Coord]struct{})
	for c, p := range g.Pieces() {
		if c.Col > 1 {
			l1, _ := g.Get(c.Col-1, c.Row)
			l2, _ := g.Get(c.Col-2, c.Row)
			if sameKind(p.Kind, l1, l2) {
				marked[c] = struct{}{}
				marked[board.Coord{Col: c.Col - 1, Row: c.Row}] = struct{}{}
				marked[board.Coord{Col: c.Col - 2, Row: c.Row}] = struct{}{}
			}
		}
		if c.Row > 1 {
			v1, _ := g.Get(c.Col, c.Row-1)
			v2, _ := g.Get(c.Col, c.Row-2)
			if sameKind(p.Kind, v1, v2) {
				marked[c] = struct{}{}
				marked[board.Coord{Col: c.Col, Row: c.Row - 1}] = struct{}{}
				marked[board.Coord{Col: c.Col, Row: c.Row - 2}] = struct{}{}
			}
		}
	}
	return fromMarks(marked, g)
}

// MatchesAt reports whether placing kind at (col,row) would complete a run
// with the two already-placed pieces before it in its row or column.
//
// Used during initial fill, which places pieces column by column from the
// bottom, so only the preceding neighbours are ever populated.
func (d *Detector) MatchesAt(g *board.Grid, col, row int, kind board.Kind) bool {
	if col > 1 {
		l1, _ := g.Get(col-1, row)
		l2, _ := g.Get(col-2, row)
		if sameKind(kind, l1, l2) {
			return true
		}
	}
	if row > 1 {
		v1, _ := g.Get(col, row-1)
		v2, _ := g.Get(col, row-2)
		if sameKind(kind, v1, v2) {
			return true
		}
	}
	return false
}

// Mark sets Matched on every piece in s. Coordinates that turn out empty are
// returned so the caller can treat them as a desync.
func Mark(g *board.Grid, s Set) []board.Coord {
	var missing []board.Coord
	for _, c := range s.Coords() {
		p, err := g.Get(c.Col, c.Row)
		if err != nil || p == nil {
			missing = append(missing, c)
			continue
		}
		p.Matched = true
	}
	return missing
}

func sameKind(k board.Kind, a, b *board.Piece) bool {
	return a != nil && b != nil && a.Kind == k && b.Kind == k
}
