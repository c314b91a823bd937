// Package engine implements the cascade resolver for a tile-matching board.
//
// A Resolver owns one board and its GameState. A swap moves it from
// ReadyForInput to Waiting; it returns to ReadyForInput only once the board
// holds no match. In between it runs destroy passes:
//
//	destroy -> [AfterDestroy] -> collapse -> [AfterCollapse]
//	        -> refill -> [AfterRefill] -> re-scan
//
// The bracketed names are suspension points. A Scheduler decides how long
// each one lasts and is where cancellation is observed.
//
// # Determinism
//
// Every random kind comes from a KindSource. Given the same seed, level and
// move sequence, a game produces the same events with the same IDs. Event
// order comes from a logical Clock, never wall-clock time. Replay relies on
// this: a stored game is rebuilt by re-running setup from its seed and
// re-applying its moves.
//
// # Single writer
//
// A Resolver is driven from one goroutine. Session provides a queue in front
// of it so swap requests may be submitted from anywhere; the Run loop is the
// only caller of AttemptSwap.
package engine
