package query

import "github.com/roach88/tilematch/internal/ir"

// Predicate is a filter condition.
//
// This is a sealed interface: only types in this package implement it, so
// Compile and Validate can switch on it exhaustively.
type Predicate interface {
	predicateNode()
}

// Select reads Columns from one table of the log.
type Select struct {
	From    string    // "events", "moves" or "games"
	Columns []string  // empty selects every column in schema order
	Filter  Predicate // nil = no filter
}

// Equals matches rows where Field = Value.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// In matches rows where Field equals any of Values. An empty In matches
// nothing.
type In struct {
	Field  string
	Values []ir.Value
}

func (In) predicateNode() {}

// Range matches rows where Min <= Field <= Max. A nil bound is open.
type Range struct {
	Field string
	Min   *int64
	Max   *int64
}

func (Range) predicateNode() {}

// And matches rows where every predicate holds. An empty And matches
// everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// All combines the non-nil predicates. It returns nil when none remain and
// the predicate itself when only one does.
func All(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return And{Predicates: kept}
}

// tables maps each table to its columns in schema order. The first entry of
// order is the ORDER BY key.
var tables = map[string]struct {
	columns []string
	order   []string
}{
	"events": {
		columns: []string{"id", "game_id", "seq", "move", "pass", "type", "payload"},
		order:   []string{"seq"},
	},
	"moves": {
		columns: []string{"game_id", "number", "a_col", "a_row", "b_col", "b_row", "outcome", "passes", "board_hash"},
		order:   []string{"game_id", "number"},
	},
	"games": {
		columns: []string{"id", "name", "seed", "width", "height", "kinds", "level", "level_hash", "board_hash", "engine_version", "schema_version"},
		order:   []string{"id"},
	},
}
