package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_InvalidDimensions(t *testing.T) {
	_, err := NewGrid(0, 5)
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = NewGrid(5, -1)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestGrid_GetSetBounds(t *testing.T) {
	g, err := NewGrid(3, 4)
	require.NoError(t, err)

	tests := []struct {
		name     string
		col, row int
	}{
		{"negative column", -1, 0},
		{"negative row", 0, -1},
		{"column == width", 3, 0},
		{"row == height", 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Get(tt.col, tt.row)
			require.Error(t, err)
			assert.True(t, IsOutOfBounds(err))

			err = g.Set(tt.col, tt.row, NewPiece(0))
			assert.True(t, IsOutOfBounds(err))

			_, err = g.Clear(tt.col, tt.row)
			assert.True(t, IsOutOfBounds(err))
		})
	}

	var oob *OutOfBoundsError
	_, err = g.Get(3, 0)
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 3, oob.Col)
	assert.Equal(t, 3, oob.Width)
	assert.Equal(t, 4, oob.Height)
}

func TestGrid_SetSyncsCoordinates(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)

	p := NewPiece(2)
	require.NoError(t, g.Set(1, 2, p))
	assert.Equal(t, Coord{Col: 1, Row: 2}, p.Coord())

	got, err := g.Get(1, 2)
	require.NoError(t, err)
	assert.Same(t, p, got)

	occupied, err := g.Occupied(0, 0)
	require.NoError(t, err)
	assert.False(t, occupied)
}

func TestGrid_SetRejectsResidentPiece(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)

	p := NewPiece(1)
	require.NoError(t, g.Set(0, 0, p))

	err = g.Set(2, 2, p)
	require.ErrorIs(t, err, ErrPieceResident)

	// Grid unchanged
	got, _ := g.Get(2, 2)
	assert.Nil(t, got)
	assert.Equal(t, Coord{Col: 0, Row: 0}, p.Coord())
}

func TestGrid_SwapSymmetry(t *testing.T) {
	g, err := ParseLayout([]string{
		"ABC",
		"DEF",
	})
	require.NoError(t, err)

	before := g.Layout()
	a, b := Coord{Col: 0, Row: 0}, Coord{Col: 1, Row: 0}
	pa, _ := g.Get(a.Col, a.Row)
	pb, _ := g.Get(b.Col, b.Row)
	pa.Matched = true
	pb.Special = ColorBomb

	require.NoError(t, g.Swap(a, b))
	assert.Equal(t, []string{"ABC", "EDF"}, g.Layout())
	assert.Equal(t, b, pa.Coord())
	assert.Equal(t, a, pb.Coord())

	require.NoError(t, g.Swap(a, b))
	assert.Equal(t, before, g.Layout())
	assert.Equal(t, a, pa.Coord())
	assert.Equal(t, b, pb.Coord())

	// Swap never touches flags
	assert.True(t, pa.Matched)
	assert.Equal(t, ColorBomb, pb.Special)
}

func TestGrid_SwapWithEmpty(t *testing.T) {
	g, err := ParseLayout([]string{"A."})
	require.NoError(t, err)

	require.NoError(t, g.Swap(Coord{0, 0}, Coord{1, 0}))
	assert.Equal(t, []string{".A"}, g.Layout())
	p, _ := g.Get(1, 0)
	assert.Equal(t, Coord{Col: 1, Row: 0}, p.Coord())
}

func TestGrid_SwapErrors(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)

	err = g.Swap(Coord{0, 0}, Coord{0, 0})
	require.ErrorIs(t, err, ErrSameSlot)

	err = g.Swap(Coord{0, 0}, Coord{2, 0})
	assert.True(t, IsOutOfBounds(err))
}

func TestGrid_Move(t *testing.T) {
	g, err := ParseLayout([]string{
		"A",
		".",
		"B",
	})
	require.NoError(t, err)

	require.NoError(t, g.Move(Coord{0, 2}, Coord{0, 1}))
	assert.Equal(t, []string{".", "A", "B"}, g.Layout())
	p, _ := g.Get(0, 1)
	assert.Equal(t, 1, p.Row)

	err = g.Move(Coord{0, 1}, Coord{0, 0})
	require.ErrorIs(t, err, ErrSlotOccupied)

	// Moving an empty slot is a no-op
	require.NoError(t, g.Move(Coord{0, 2}, Coord{0, 0}))
	assert.Equal(t, []string{".", "A", "B"}, g.Layout())
}

func TestGrid_PiecesColumnMajor(t *testing.T) {
	g, err := ParseLayout([]string{
		"C.",
		"AB",
	})
	require.NoError(t, err)

	var coords []Coord
	var kinds []Kind
	for c, p := range g.Pieces() {
		coords = append(coords, c)
		kinds = append(kinds, p.Kind)
	}
	assert.Equal(t, []Coord{{0, 0}, {0, 1}, {1, 0}}, coords)
	assert.Equal(t, []Kind{0, 2, 1}, kinds)
	assert.Equal(t, []Coord{{1, 1}}, g.Empties())
	assert.Equal(t, 3, g.Count())
}

func TestGrid_Clone(t *testing.T) {
	g, err := ParseLayout([]string{"AB"})
	require.NoError(t, err)
	p, _ := g.Get(0, 0)
	p.Special = AdjacentBomb

	c := g.Clone()
	cp, _ := c.Get(0, 0)
	assert.NotSame(t, p, cp)
	assert.Equal(t, AdjacentBomb, cp.Special)

	_, err = c.Clear(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"AB"}, g.Layout())
}

func TestCoord_Adjacent(t *testing.T) {
	c := Coord{Col: 2, Row: 2}
	assert.True(t, c.Adjacent(Coord{1, 2}))
	assert.True(t, c.Adjacent(Coord{2, 3}))
	assert.False(t, c.Adjacent(Coord{3, 3}))
	assert.False(t, c.Adjacent(c))
	assert.False(t, c.Adjacent(Coord{4, 2}))
}
