// Package ir defines the recorded form of a game: constrained payload values,
// their canonical JSON encoding, content-addressed IDs, and the Game, Move and
// Event records the store persists.
//
// All other internal packages may import ir; ir imports nothing internal.
//
// Constraints:
//   - no float or null payload values; numbers are int64
//   - JSON tags use snake_case
//   - ordering comes from logical sequence numbers, never wall-clock time
package ir
