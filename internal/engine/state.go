package engine

// GameState gates swap input.
type GameState int32

const (
	// ReadyForInput accepts a swap.
	ReadyForInput GameState = iota
	// Waiting means a swap or cascade is being resolved.
	Waiting
)

func (s GameState) String() string {
	switch s {
	case ReadyForInput:
		return "ready_for_input"
	case Waiting:
		return "waiting"
	default:
		return "unknown"
	}
}
