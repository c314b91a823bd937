package harness

import "github.com/roach88/tilematch/internal/ir"

// TraceEvent is one recorded event as read back from the store.
type TraceEvent struct {
	ID      string       `json:"id"`
	Seq     int64        `json:"seq"`
	Move    int64        `json:"move"`
	Pass    int          `json:"pass"`
	Type    ir.EventType `json:"type"`
	Payload ir.Object    `json:"payload"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success: every expect clause and
	// assertion held.
	Pass bool `json:"pass"`

	GameID string `json:"game_id"`

	// Trace contains every event in seq order.
	Trace []TraceEvent `json:"trace"`

	// Moves is the move log as stored.
	Moves []ir.Move `json:"moves"`

	// Rows is the final board layout, top row first.
	Rows []string `json:"rows"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Moves:  []ir.Move{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Types returns the event types of the trace in order.
func (r *Result) Types() []ir.EventType {
	types := make([]ir.EventType, len(r.Trace))
	for i, ev := range r.Trace {
		types[i] = ev.Type
	}
	return types
}
