// Package board provides the grid of piece slots the resolver mutates.
//
// The grid is width x height, addressed by (column, row) with row 0 at the
// bottom. Gravity pulls pieces toward row 0, so collapse walks each column
// from row 0 upward.
//
// INVARIANTS:
//   - Every access is bounds-checked; out-of-range coordinates return
//     *OutOfBoundsError and never clamp.
//   - A slot holds at most one piece and a piece lives in at most one slot.
//   - A resident piece's Column/Row always equal the slot it occupies. Only
//     Grid methods write those fields.
//
// The grid owns every piece reachable through it. The pair link between the
// two pieces of a swap is a non-owning reference scoped to an epoch; reading
// it after the epoch has moved on returns *StalePieceError.
package board
