// Package feed serves a live game over a websocket.
//
// Clients receive a snapshot on connect, then every piece removal and
// creation as the cascade resolves, and a move message with the board after
// each processed swap. Clients submit swaps as
//
//	{"type":"swap","a":[col,row],"b":[col,row]}
//
// with an optional "generation" to have the request dropped if the board has
// moved on. Piece notifications arrive from the session goroutine through the
// engine's VisualHook and BombHook; move messages through its MoveFunc.
package feed
