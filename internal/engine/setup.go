package engine

import (
	"fmt"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/match"
)

// MaxSetupResamples bounds how often initial fill redraws a kind that would
// complete a run. After that the last draw is kept.
const MaxSetupResamples = 100

// SetupReport describes an initial fill.
type SetupReport struct {
	// Collisions counts draws rejected because they completed a run.
	Collisions int

	// Unresolved lists slots where the resample budget ran out and a
	// matching kind was placed anyway. Empty for any board with three or
	// more kinds in practice.
	Unresolved []board.Coord
}

// Initialize fills a new width x height grid column by column from the
// bottom, redrawing any kind that would complete a run with the pieces
// already placed. Running out of redraws is reported, not returned as an
// error.
func Initialize(width, height, kinds int, src KindSource, d *match.Detector) (*board.Grid, SetupReport, error) {
	var report SetupReport
	if kinds < 1 || kinds > board.MaxKinds {
		return nil, report, fmt.Errorf("initialize: kinds must be in [1,%d], got %d", board.MaxKinds, kinds)
	}
	g, err := board.NewGrid(width, height)
	if err != nil {
		return nil, report, fmt.Errorf("initialize: %w", err)
	}

	for col := 0; col < width; col++ {
		for row := 0; row < height; row++ {
			kind := board.Kind(src.IntN(kinds))
			tries := 0
			for d.MatchesAt(g, col, row, kind) && tries < MaxSetupResamples {
				report.Collisions++
				kind = board.Kind(src.IntN(kinds))
				tries++
			}
			if tries == MaxSetupResamples && d.MatchesAt(g, col, row, kind) {
				report.Unresolved = append(report.Unresolved, board.Coord{Col: col, Row: row})
			}
			if err := g.Set(col, row, board.NewPiece(kind)); err != nil {
				return nil, report, fmt.Errorf("initialize: %w", err)
			}
		}
	}
	return g, report, nil
}
