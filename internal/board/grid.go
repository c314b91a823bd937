package board

import (
	"fmt"
	"iter"
)

// Coord addresses a slot. Row 0 is the bottom row.
type Coord struct {
	Col int
	Row int
}

// String implements fmt.Stringer.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
}

// Adjacent reports whether c and o share an edge.
func (c Coord) Adjacent(o Coord) bool {
	dc, dr := c.Col-o.Col, c.Row-o.Row
	if dc < 0 {
		dc = -dc
	}
	if dr < 0 {
		dr = -dr
	}
	return dc+dr == 1
}

// Grid is a fixed-size array of piece slots.
//
// Slots are stored column-major: index = col*height + row.
type Grid struct {
	width  int
	height int
	cells  []*Piece
}

// NewGrid creates an empty width x height grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]*Piece, width*height),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (col,row) addresses a slot.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.width && row >= 0 && row < g.height
}

func (g *Grid) index(col, row int) (int, error) {
	if !g.InBounds(col, row) {
		return 0, &OutOfBoundsError{Col: col, Row: row, Width: g.width, Height: g.height}
	}
	return col*g.height + row, nil
}

// Get returns the piece at (col,row), or nil when the slot is empty.
func (g *Grid) Get(col, row int) (*Piece, error) {
	i, err := g.index(col, row)
	if err != nil {
		return nil, err
	}
	return g.cells[i], nil
}

// Occupied reports whether (col,row) holds a piece.
func (g *Grid) Occupied(col, row int) (bool, error) {
	p, err := g.Get(col, row)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// Set places p at (col,row), replacing any previous occupant. A nil p empties
// the slot. The piece's Column/Row are updated to the slot.
//
// Returns ErrPieceResident if p currently lives in a different slot of g.
func (g *Grid) Set(col, row int, p *Piece) error {
	i, err := g.index(col, row)
	if err != nil {
		return err
	}
	if p != nil && (p.Column != col || p.Row != row) && g.InBounds(p.Column, p.Row) {
		if g.cells[p.Column*g.height+p.Row] == p {
			return fmt.Errorf("%w: piece at %s cannot be placed at %s", ErrPieceResident, p.Coord(), Coord{col, row})
		}
	}
	g.cells[i] = p
	if p != nil {
		p.Column, p.Row = col, row
	}
	return nil
}

// Clear empties (col,row) and returns the piece that was there, if any.
func (g *Grid) Clear(col, row int) (*Piece, error) {
	i, err := g.index(col, row)
	if err != nil {
		return nil, err
	}
	p := g.cells[i]
	g.cells[i] = nil
	return p, nil
}

// Move relocates the piece at from into the empty slot to.
// Moving an empty slot is a no-op.
func (g *Grid) Move(from, to Coord) error {
	fi, err := g.index(from.Col, from.Row)
	if err != nil {
		return err
	}
	ti, err := g.index(to.Col, to.Row)
	if err != nil {
		return err
	}
	if fi == ti {
		return nil
	}
	p := g.cells[fi]
	if p == nil {
		return nil
	}
	if g.cells[ti] != nil {
		return fmt.Errorf("%w: %s -> %s", ErrSlotOccupied, from, to)
	}
	g.cells[ti] = p
	g.cells[fi] = nil
	p.Column, p.Row = to.Col, to.Row
	return nil
}

// Swap exchanges the contents of a and b and resyncs each relocated piece's
// Column/Row. Matched and Special are left untouched.
func (g *Grid) Swap(a, b Coord) error {
	ai, err := g.index(a.Col, a.Row)
	if err != nil {
		return err
	}
	bi, err := g.index(b.Col, b.Row)
	if err != nil {
		return err
	}
	if ai == bi {
		return fmt.Errorf("%w: %s", ErrSameSlot, a)
	}
	g.cells[ai], g.cells[bi] = g.cells[bi], g.cells[ai]
	if p := g.cells[ai]; p != nil {
		p.Column, p.Row = a.Col, a.Row
	}
	if p := g.cells[bi]; p != nil {
		p.Column, p.Row = b.Col, b.Row
	}
	return nil
}

// Pieces yields every occupied slot in column-major order: column 0 bottom to
// top, then column 1, and so on.
func (g *Grid) Pieces() iter.Seq2[Coord, *Piece] {
	return func(yield func(Coord, *Piece) bool) {
		for col := 0; col < g.width; col++ {
			for row := 0; row < g.height; row++ {
				p := g.cells[col*g.height+row]
				if p == nil {
					continue
				}
				if !yield(Coord{Col: col, Row: row}, p) {
					return
				}
			}
		}
	}
}

// Empties returns every empty slot in column-major order.
func (g *Grid) Empties() []Coord {
	var out []Coord
	for col := 0; col < g.width; col++ {
		for row := 0; row < g.height; row++ {
			if g.cells[col*g.height+row] == nil {
				out = append(out, Coord{Col: col, Row: row})
			}
		}
	}
	return out
}

// Count returns the number of occupied slots.
func (g *Grid) Count() int {
	n := 0
	for _, p := range g.cells {
		if p != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of g. Pair links are not copied.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		width:  g.width,
		height: g.height,
		cells:  make([]*Piece, len(g.cells)),
	}
	for i, p := range g.cells {
		if p == nil {
			continue
		}
		c.cells[i] = &Piece{
			Kind:    p.Kind,
			Column:  p.Column,
			Row:     p.Row,
			Matched: p.Matched,
			Special: p.Special,
		}
	}
	return c
}
