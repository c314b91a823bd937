package ir

// Version constants for the stored log and the engine.
const (
	// SchemaVersion is the event log schema version.
	SchemaVersion = "1"

	// EngineVersion is the resolver version recorded with each game.
	EngineVersion = "0.1.0"
)
