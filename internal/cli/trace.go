package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/query"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	GameID   string
	Move     int64    // -1 for every move
	Pass     int      // -1 for every pass
	Types    []string // empty for every type
}

// TraceEvent is one event in the trace timeline.
type TraceEvent struct {
	Seq     int64        `json:"seq"`
	Move    int64        `json:"move"`
	Pass    int          `json:"pass"`
	Type    ir.EventType `json:"type"`
	ID      string       `json:"id"`
	Payload ir.Object    `json:"payload"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Moves       int            `json:"moves"`
	ByType      map[string]int `json:"by_type"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	GameID   string       `json:"game_id"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print a game's event log",
		Long: `Print the recorded events of a game in sequence order.

Each line shows the logical sequence number, the move and destroy pass the
event belongs to, its type and payload.

Examples:
  tilematch trace --db ./games.db
  tilematch trace --db ./games.db --move 3 --pass 2
  tilematch trace --db ./games.db --type promoted,large_match --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "game ID (default: latest game)")
	cmd.Flags().Int64Var(&opts.Move, "move", -1, "only events of this move")
	cmd.Flags().IntVar(&opts.Pass, "pass", -1, "only events of this destroy pass")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "only events of these types")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	gameID, err := resolveGameID(ctx, st, opts.GameID)
	if err != nil {
		return err
	}

	filter, err := traceFilter(opts)
	if err != nil {
		return err
	}
	events, err := st.QueryEvents(ctx, gameID, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	if len(events) == 0 {
		msg := fmt.Sprintf("no matching events for game %s", gameID)
		_ = formatter.Error("E_NOT_FOUND", msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	result := TraceResult{
		GameID:   gameID,
		Timeline: []TraceEvent{},
		Stats:    TraceStats{ByType: map[string]int{}},
	}
	var moves []int64
	for _, ev := range events {
		result.Timeline = append(result.Timeline, TraceEvent{
			Seq:     ev.Seq,
			Move:    ev.Move,
			Pass:    ev.Pass,
			Type:    ev.Type,
			ID:      ev.ID,
			Payload: ev.Payload,
		})
		result.Stats.ByType[string(ev.Type)]++
		if !slices.Contains(moves, ev.Move) {
			moves = append(moves, ev.Move)
		}
	}
	result.Stats.TotalEvents = len(result.Timeline)
	result.Stats.Moves = len(moves)

	if formatter.IsJSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, GameID: gameID})
	}
	return outputTraceText(formatter, result)
}

// traceFilter builds the event filter for the --move, --pass and --type
// flags.
func traceFilter(opts *TraceOptions) (query.Predicate, error) {
	var preds []query.Predicate
	if opts.Move >= 0 {
		preds = append(preds, query.Equals{Field: "move", Value: ir.Int(opts.Move)})
	}
	if opts.Pass >= 0 {
		preds = append(preds, query.Equals{Field: "pass", Value: ir.Int(opts.Pass)})
	}
	if len(opts.Types) > 0 {
		values := make([]ir.Value, len(opts.Types))
		for i, t := range opts.Types {
			if !slices.Contains(ir.EventTypes, ir.EventType(t)) {
				return nil, NewExitError(ExitCommandError,
					fmt.Sprintf("unknown event type %q (have %s)", t, strings.Join(eventTypeNames(), ", ")))
			}
			values[i] = ir.String(t)
		}
		preds = append(preds, query.In{Field: "type", Values: values})
	}
	return query.All(preds...), nil
}

func eventTypeNames() []string {
	names := make([]string, len(ir.EventTypes))
	for i, t := range ir.EventTypes {
		names[i] = string(t)
	}
	return names
}

func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trace for game %s\n\n", result.GameID)

	for _, ev := range result.Timeline {
		payload, err := ir.MarshalValue(ev.Payload)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("event %d payload", ev.Seq), err)
		}
		fmt.Fprintf(&sb, "[%4d] move=%-3d pass=%-2d %-15s %s\n", ev.Seq, ev.Move, ev.Pass, ev.Type, payload)
		if formatter.Verbose {
			fmt.Fprintf(&sb, "       id=%s\n", ev.ID)
		}
	}

	types := make([]string, 0, len(result.Stats.ByType))
	for t := range result.Stats.ByType {
		types = append(types, t)
	}
	slices.Sort(types)

	fmt.Fprintf(&sb, "\n%d event(s) across %d move(s)\n", result.Stats.TotalEvents, result.Stats.Moves)
	for _, t := range types {
		fmt.Fprintf(&sb, "  %-15s %d\n", t, result.Stats.ByType[t])
	}
	fmt.Fprint(formatter.Writer, sb.String())
	return nil
}
