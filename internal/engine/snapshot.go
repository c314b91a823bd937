package engine

import (
	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/ir"
)

// Specials lists the special pieces on g in column-major order as
// {"at": [col,row], "special": name} objects.
func Specials(g *board.Grid) ir.Array {
	out := ir.Array{}
	for c, p := range g.Pieces() {
		if p.Special == board.SpecialNone {
			continue
		}
		out = append(out, ir.Object{
			"at":      ir.Coord(c.Col, c.Row),
			"special": ir.String(p.Special.String()),
		})
	}
	return out
}

// HashBoard returns the content hash of g's kinds and specials.
func HashBoard(g *board.Grid) (string, error) {
	return ir.BoardHash(g.Layout(), Specials(g))
}

// Snapshot is a point-in-time view of a resolver's board.
type Snapshot struct {
	GameID     string   `json:"game_id"`
	Generation uint64   `json:"generation"`
	State      string   `json:"state"`
	Moves      int64    `json:"moves"`
	Rows       []string `json:"rows"`
	Specials   ir.Array `json:"specials"`
}

// Snapshot captures the board. Call it only from the goroutine driving the
// resolver, or while no call is in progress.
func (r *Resolver) Snapshot() Snapshot {
	return Snapshot{
		GameID:     r.gameID,
		Generation: r.Generation(),
		State:      r.State().String(),
		Moves:      r.move,
		Rows:       r.grid.Layout(),
		Specials:   Specials(r.grid),
	}
}
