package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/ir"
)

// SwapOptions holds flags for the swap command.
type SwapOptions struct {
	*RootOptions
	Database string
	GameID   string
}

// PromotionInfo describes one promoted piece.
type PromotionInfo struct {
	Pass    int    `json:"pass"`
	At      [2]int `json:"at"`
	Special string `json:"special"`
}

// SwapResult describes the outcome of one swap.
type SwapResult struct {
	GameID       string          `json:"game_id"`
	Move         int64           `json:"move"`
	A            [2]int          `json:"a"`
	B            [2]int          `json:"b"`
	Outcome      ir.MoveOutcome  `json:"outcome"`
	Passes       int             `json:"passes"`
	Removed      int             `json:"removed"`
	Created      int             `json:"created"`
	LargeMatches []int           `json:"large_matches,omitempty"`
	Promotions   []PromotionInfo `json:"promotions,omitempty"`
	Rows         []string        `json:"rows"`
}

// NewSwapCommand creates the swap command.
func NewSwapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SwapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "swap <c1> <r1> <c2> <r2>",
		Short: "Swap two pieces and resolve the cascade",
		Long: `Swap the pieces at (c1,r1) and (c2,r2) and resolve the result.

The game is rebuilt from its stored moves first, then the swap is applied
and appended to the log. Row 0 is the bottom row. A swap that makes no
match is reverted; a swap that cannot be applied is logged as rejected.
A swap whose cascade fails is logged as aborted, and the game cannot
continue.

Exit codes:
  0 - Swap resolved or reverted
  1 - Swap rejected or the cascade failed
  2 - Command error (database, unknown game, bad coordinates, aborted game)

Examples:
  tilematch swap --db ./games.db 3 0 4 0
  tilematch swap --db ./games.db --game 0192f1d0-... 2 5 2 4`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parseSwapArgs(args)
			if err != nil {
				return err
			}
			return runSwap(cmd.Context(), opts, a, b, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "game ID (default: latest game)")

	return cmd
}

func parseSwapArgs(args []string) (board.Coord, board.Coord, error) {
	var n [4]int
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return board.Coord{}, board.Coord{}, NewExitError(ExitCommandError,
				fmt.Sprintf("coordinate %d: %q is not an integer", i+1, arg))
		}
		n[i] = v
	}
	return board.Coord{Col: n[0], Row: n[1]}, board.Coord{Col: n[2], Row: n[3]}, nil
}

func runSwap(ctx context.Context, opts *SwapOptions, a, b board.Coord, cmd *cobra.Command) error {
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
	r, log, err := restoreGame(ctx, st, gameID, formatter.Logger())
	if err != nil {
		return err
	}
	if log.AbortedAt > 0 {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("game %s was aborted at move %d and cannot continue", gameID, log.AbortedAt))
	}
	if log.Interrupted {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("game %s stopped mid-cascade at seq %d; run replay to inspect it", gameID, log.LastSeq))
	}
	formatter.VerboseLog("Restored game %s at move %d", gameID, log.LastMove)

	res, swapErr := r.AttemptSwap(ctx, a, b)
	if err := writeMove(ctx, st, gameID, a, b, res, r.Grid()); err != nil {
		return WrapExitError(ExitCommandError, "failed to store move", err)
	}

	result := SwapResult{
		GameID:       gameID,
		Move:         res.Move,
		A:            [2]int{a.Col, a.Row},
		B:            [2]int{b.Col, b.Row},
		Outcome:      res.Outcome,
		Passes:       res.Passes,
		Removed:      res.Removed,
		Created:      res.Created,
		LargeMatches: res.LargeMatches,
		Rows:         r.Grid().Layout(),
	}
	for _, p := range res.Promotions {
		result.Promotions = append(result.Promotions, PromotionInfo{
			Pass:    p.Pass,
			At:      [2]int{p.At.Col, p.At.Row},
			Special: p.Special.String(),
		})
	}

	if swapErr != nil {
		code := errorCode(swapErr)
		if formatter.IsJSON() {
			_ = formatter.encode(CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: code, Message: swapErr.Error()},
				GameID: gameID,
			})
		} else {
			_ = formatter.Error(code, swapErr.Error(), nil)
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("move %d %s", res.Move, res.Outcome), swapErr)
	}

	if formatter.IsJSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, GameID: gameID})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Move %d: %s-%s %s", result.Move, a, b, result.Outcome)
	if result.Outcome == ir.MoveResolved {
		fmt.Fprintf(&sb, " (%d pass(es), %d removed, %d created)", result.Passes, result.Removed, result.Created)
	}
	sb.WriteByte('\n')
	for _, p := range result.Promotions {
		fmt.Fprintf(&sb, "  promoted (%d,%d) to %s\n", p.At[0], p.At[1], p.Special)
	}
	for _, n := range result.LargeMatches {
		fmt.Fprintf(&sb, "  large match of %d\n", n)
	}
	sb.WriteByte('\n')
	renderBoard(&sb, result.Rows)
	fmt.Fprint(formatter.Writer, sb.String())
	return nil
}
