package ir

// EventType names an observable step of a game.
type EventType string

const (
	EventGameStarted   EventType = "game_started"
	EventSwapAccepted  EventType = "swap_accepted"
	EventSwapReverted  EventType = "swap_reverted"
	EventSwapRejected  EventType = "swap_rejected"
	EventLargeMatch    EventType = "large_match"
	EventPromoted      EventType = "promoted"
	EventPieceRemoved  EventType = "piece_removed"
	EventCollapsed     EventType = "collapsed"
	EventPieceCreated  EventType = "piece_created"
	EventPassCompleted EventType = "pass_completed"
	EventSettled       EventType = "settled"
)

// EventTypes lists every event type in the order a cascade emits them.
var EventTypes = []EventType{
	EventGameStarted,
	EventSwapAccepted,
	EventSwapReverted,
	EventSwapRejected,
	EventLargeMatch,
	EventPromoted,
	EventPieceRemoved,
	EventCollapsed,
	EventPieceCreated,
	EventPassCompleted,
	EventSettled,
}

// Event is one recorded step. Seq is the game's logical clock value; Move is
// the 1-based move number (0 for setup); Pass is the 1-based destroy pass
// within the move's cascade (0 outside a cascade).
type Event struct {
	ID      string    `json:"id"`
	GameID  string    `json:"game_id"`
	Seq     int64     `json:"seq"`
	Move    int64     `json:"move"`
	Pass    int       `json:"pass"`
	Type    EventType `json:"type"`
	Payload Object    `json:"payload"`
}

// Game is the persisted header of a game. Everything needed to rebuild the
// starting board is here: the compiled level and the seed.
type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seed      int64  `json:"seed"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Kinds     int    `json:"kinds"`
	Level     Object `json:"level"`
	LevelHash string `json:"level_hash"`
	BoardHash string `json:"board_hash"`
	Engine    string `json:"engine"`
}

// MoveOutcome classifies what a swap request did.
type MoveOutcome string

const (
	MoveResolved MoveOutcome = "resolved"
	MoveReverted MoveOutcome = "reverted"
	MoveRejected MoveOutcome = "rejected"

	// MoveAborted is an accepted swap whose cascade stopped before the
	// board settled. The board changed and may still hold a match.
	MoveAborted MoveOutcome = "aborted"
)

// Move is a swap request as it was applied to a game.
type Move struct {
	GameID    string      `json:"game_id"`
	Number    int64       `json:"number"`
	A         [2]int      `json:"a"`
	B         [2]int      `json:"b"`
	Outcome   MoveOutcome `json:"outcome"`
	Passes    int         `json:"passes"`
	BoardHash string      `json:"board_hash"`
}
