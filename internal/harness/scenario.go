package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tilematch/internal/ir"
)

// Scenario defines a board test: a level, a sequence of swaps and
// assertions on the resulting trace and board.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// GameID is stamped on every event. Defaults to "test-game-default".
	GameID string `yaml:"game_id,omitempty"`

	// Level holds the same fields as a CUE level and is compiled with the
	// same schema.
	Level map[string]any `yaml:"level"`

	// Refill, when set, scripts the kinds refill draws, cycling.
	Refill []int `yaml:"refill,omitempty"`

	// Settle marks a scenario about how its starting layout settles. Such a
	// scenario may have no moves.
	Settle bool `yaml:"settle,omitempty"`

	// Moves are the swaps to apply, in order.
	Moves []MoveStep `yaml:"moves"`

	// Assertions validate the final trace and board.
	Assertions []Assertion `yaml:"assertions"`
}

// MoveStep is one swap request.
type MoveStep struct {
	// Swap holds the two coordinates as [[col,row],[col,row]].
	Swap [][]int `yaml:"swap"`

	// Expect specifies the expected result. If nil, no validation is
	// performed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected swap behavior.
type ExpectClause struct {
	// Outcome is resolved, reverted, rejected or aborted.
	Outcome string `yaml:"outcome"`

	// Passes is the expected destroy pass count, when set.
	Passes *int `yaml:"passes,omitempty"`

	// Error is the expected error code (INVALID_SWAP, OUT_OF_BOUNDS, ...),
	// empty for success.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace or the final board.
type Assertion struct {
	// Type specifies the assertion type, see the package documentation.
	Type string `yaml:"type"`

	// Event is the event type (trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// Payload is a subset of the expected payload (trace_contains).
	Payload map[string]any `yaml:"payload,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected event type order (trace_order).
	Events []string `yaml:"events,omitempty"`

	// Rows is the expected board layout (final_board).
	Rows []string `yaml:"rows,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalBoard    = "final_board"
	AssertBoardSettled  = "board_settled"
)

var outcomes = []string{string(ir.MoveResolved), string(ir.MoveReverted), string(ir.MoveRejected), string(ir.MoveAborted)}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ext := filepath.Ext(path); !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, path)
		}
		return nil
	})
	slices.Sort(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Level) == 0 {
		return fmt.Errorf("level is required")
	}
	if len(s.Moves) == 0 && !s.Settle {
		return fmt.Errorf("moves list is required unless settle is set")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Moves {
		if len(step.Swap) != 2 || len(step.Swap[0]) != 2 || len(step.Swap[1]) != 2 {
			return fmt.Errorf("moves[%d]: swap must be [[col,row],[col,row]]", i)
		}
		if step.Expect != nil && !slices.Contains(outcomes, step.Expect.Outcome) {
			return fmt.Errorf("moves[%d].expect: outcome must be one of %v", i, outcomes)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFinalBoard:
		if len(a.Rows) == 0 {
			return fmt.Errorf("assertions[%d]: rows are required for final_board", index)
		}
	case AssertBoardSettled:
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
