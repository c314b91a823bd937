// Package harness runs board scenarios against the real resolver.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	game_id: fixed-id            # optional, default "test-game-default"
//	level:                       # same fields as a CUE level
//	  kinds: 4
//	  layout:
//	    - "CDCD"
//	    - "DCDC"
//	    - "AABA"
//	refill: [0, 1, 0]            # optional scripted refill kinds
//	settle: false                # optional, allows a scenario with no moves
//	moves:
//	  - swap: [[2, 0], [3, 0]]
//	    expect:
//	      outcome: resolved
//	      passes: 1
//	assertions:
//	  - type: final_board
//	    rows: ["ABAD", "CDCC", "DCDB"]
//	  - type: trace_count
//	    event: piece_removed
//	    count: 3
//
// # Assertion Types
//
//   - trace_contains: an event of the given type whose payload contains the
//     given fields
//   - trace_order: event types appear in the given order
//   - trace_count: an event type appears exactly N times
//   - final_board: the board layout after the last move
//   - board_settled: the board is full and holds no match
//
// # Deterministic Testing
//
// Every scenario runs with:
//   - a fixed game ID (testutil.FixedIDGenerator)
//   - an ImmediateScheduler, so cascades never sleep
//   - a scripted refill source when refill is given, else the level seed
//   - an in-memory SQLite store the trace is read back from
//
// so traces, including event IDs, are identical across runs and can be
// compared against golden files.
package harness
