package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/match"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] move=%d pass=%d %s\n", event.Seq, event.Move, event.Pass, event.Type)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages. g is the final board.
func EvaluateAssertions(result *Result, assertions []Assertion, g *board.Grid) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalBoard:
			err = assertFinalBoard(result.Rows, a)
		case AssertBoardSettled:
			err = assertBoardSettled(g)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

// assertTraceContains checks for an event of the given type whose payload
// contains every expected field (subset match).
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	v, err := ir.FromGo(a.Payload)
	if err != nil {
		return fmt.Errorf("trace_contains payload: %w", err)
	}
	want, _ := v.(ir.Object)
	for _, ev := range trace {
		if string(ev.Type) == a.Event && payloadContains(ev.Payload, want) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("event %s with payload %v", a.Event, a.Payload),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func payloadContains(payload, want ir.Object) bool {
	for k, v := range want {
		got, ok := payload[k]
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

// assertTraceOrder checks that the event types appear in order.
// Events don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Events) && string(ev.Type) == a.Events[next] {
			next++
		}
	}
	if next == len(a.Events) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("events in order %v", a.Events),
		Actual:   fmt.Sprintf("%s not found after %v", a.Events[next], a.Events[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that an event type appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if string(ev.Type) == a.Event {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s %d times", a.Event, a.Count),
		Actual:   fmt.Sprintf("%d times", count),
		Trace:    trace,
	}
}

func assertFinalBoard(rows []string, a Assertion) error {
	if slices.Equal(rows, a.Rows) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalBoard,
		Expected: strings.Join(a.Rows, "/"),
		Actual:   strings.Join(rows, "/"),
	}
}

func assertBoardSettled(g *board.Grid) error {
	if empties := g.Empties(); len(empties) > 0 {
		return &AssertionError{
			Type:     AssertBoardSettled,
			Expected: "a full board",
			Actual:   fmt.Sprintf("%d empty slots, first %s", len(empties), empties[0]),
		}
	}
	if s := match.NewDetector().Scan(g); !s.Empty() {
		return &AssertionError{
			Type:     AssertBoardSettled,
			Expected: "no matches",
			Actual:   fmt.Sprintf("%d matched slots", s.Len()),
		}
	}
	return nil
}
