// Package store provides SQLite-backed durable storage for game logs.
//
// The store is an append-only log of:
//   - Games: the level and seed a board was built from
//   - Moves: each swap request and its outcome
//   - Events: every step the resolver recorded, content-addressed
//
// # Patterns
//
// Idempotent writes
//   - Every insert uses ON CONFLICT DO NOTHING
//   - Replaying a game into the store it was loaded from is a no-op, so
//     callers can rebuild a game and keep appending to the same log
//
// Logical time
//   - All ordering uses seq INTEGER (the game's logical clock), never
//     timestamps
//   - Queries end in ORDER BY seq ASC (or number ASC for moves)
//   - QueryEvents takes a query.Predicate and compiles it with
//     internal/query, so filters are always parameterized
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Event IDs are computed by internal/ir using RFC 8785 canonical JSON and
// SHA-256 with domain separation; payloads are stored in the same canonical
// form.
package store
