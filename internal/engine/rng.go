package engine

import "math/rand/v2"

// KindSource yields random piece kinds. IntN returns a value in [0, n).
//
// *rand.Rand satisfies it; tests use scripted sequences.
type KindSource interface {
	IntN(n int) int
}

// NewSeededSource returns a deterministic PCG source. The same seed always
// yields the same kinds.
func NewSeededSource(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}
