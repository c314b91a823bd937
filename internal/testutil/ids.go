package testutil

// FixedIDGenerator returns the same game ID every time.
//
// A scenario run with a FixedIDGenerator produces byte-identical event logs,
// which is what golden traces compare. Unlike engine.FixedGenerator, which
// returns IDs in sequence, it never runs out.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id. An empty id becomes
// "test-game-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-game-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID. Implements engine.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
