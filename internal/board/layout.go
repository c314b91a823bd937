package board

import (
	"fmt"
	"strings"
)

// EmptyCell is the layout character for an empty slot.
const EmptyCell = '.'

// ParseLayout builds a grid from rows of kind letters.
//
// Rows are given top first, so rows[0] becomes row height-1 and the last
// entry becomes row 0. Letters A-Z map to kinds 0-25 and '.' is an empty
// slot. All rows must have the same length.
//
//	ParseLayout([]string{
//	    "ABA",
//	    "BAB",
//	})
func ParseLayout(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("board: layout has no rows")
	}
	width := len(rows[0])
	g, err := NewGrid(width, len(rows))
	if err != nil {
		return nil, fmt.Errorf("board: layout: %w", err)
	}
	for i, line := range rows {
		if len(line) != width {
			return nil, fmt.Errorf("board: layout row %d has width %d, want %d", i, len(line), width)
		}
		row := len(rows) - 1 - i
		for col := 0; col < width; col++ {
			ch := line[col]
			if ch == EmptyCell {
				continue
			}
			if ch < 'A' || ch > 'Z' {
				return nil, fmt.Errorf("board: layout row %d col %d: invalid cell %q", i, col, ch)
			}
			if err := g.Set(col, row, NewPiece(Kind(ch-'A'))); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Layout renders g as rows of kind letters, top row first. It is the inverse
// of ParseLayout for kinds below MaxKinds.
func (g *Grid) Layout() []string {
	rows := make([]string, g.height)
	var b strings.Builder
	for row := g.height - 1; row >= 0; row-- {
		b.Reset()
		for col := 0; col < g.width; col++ {
			p := g.cells[col*g.height+row]
			if p == nil {
				b.WriteByte(EmptyCell)
				continue
			}
			b.WriteByte(p.Kind.Letter())
		}
		rows[g.height-1-row] = b.String()
	}
	return rows
}

// String renders the layout one row per line.
func (g *Grid) String() string {
	return strings.Join(g.Layout(), "\n")
}
