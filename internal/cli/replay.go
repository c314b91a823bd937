package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	GameID   string // optional - specific game only
}

// ReplayGameResult holds the replay result for a single game.
type ReplayGameResult struct {
	engine.ReplayReport
	Level       string `json:"level"`
	Interrupted bool   `json:"interrupted,omitempty"`
	AbortedAt   int64  `json:"aborted_at,omitempty"`
	Unlogged    int    `json:"unlogged,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Games            []ReplayGameResult `json:"games"`
	TotalGames       int                `json:"total_games"`
	AllDeterministic bool               `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored games and verify determinism",
		Long: `Rebuild each game from its seed and moves and compare every replayed
event ID with the stored log.

A game is deterministic when both sequences are identical. The first
differing sequence number is reported otherwise.

Exit codes:
  0 - All games are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  tilematch replay --db ./games.db
  tilematch replay --db ./games.db --game 0192f1d0-...
  tilematch replay --db ./games.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "replay specific game only")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var gameIDs []string
	if opts.GameID != "" {
		gameIDs = []string{opts.GameID}
	} else {
		games, err := st.ListGames(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list games", err)
		}
		for _, g := range games {
			gameIDs = append(gameIDs, g.ID)
		}
	}

	result := ReplayResult{
		Games:            make([]ReplayGameResult, 0, len(gameIDs)),
		TotalGames:       len(gameIDs),
		AllDeterministic: true,
	}
	if len(gameIDs) == 0 {
		if formatter.IsJSON() {
			return outputReplayJSON(formatter, result)
		}
		fmt.Fprintln(formatter.Writer, "No games found in database.")
		return nil
	}

	for _, id := range gameIDs {
		formatter.VerboseLog("Replaying game %s", id)
		game, err := replayGame(ctx, st, id)
		if err != nil {
			return err
		}
		result.Games = append(result.Games, game)
		if !game.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.IsJSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayGame verifies one game against its log.
func replayGame(ctx context.Context, st *store.Store, gameID string) (ReplayGameResult, error) {
	log, err := st.LoadGame(ctx, gameID)
	if err != nil {
		return ReplayGameResult{}, WrapExitError(ExitCommandError, fmt.Sprintf("failed to load game %s", gameID), err)
	}
	_, cfg, err := gameConfig(log.Game)
	if err != nil {
		return ReplayGameResult{}, err
	}
	report, err := engine.VerifyReplay(ctx, cfg, log.Moves, log.Events)
	if err != nil {
		return ReplayGameResult{}, WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay game %s", gameID), err)
	}
	return ReplayGameResult{
		ReplayReport: report,
		Level:        log.Game.Name,
		Interrupted:  log.Interrupted,
		AbortedAt:    log.AbortedAt,
		Unlogged:     log.Unlogged,
	}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}
	if err := formatter.encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Replay Summary: %d game(s)\n", result.TotalGames)
	fmt.Fprintln(w)

	for _, g := range result.Games {
		status := "\u2713"
		if !g.Deterministic {
			status = "\u2717"
		}
		fmt.Fprintf(w, "%s Game: %s (%s)\n", status, g.GameID, g.Level)
		fmt.Fprintf(w, "  Moves: %d, events: %d recorded, %d replayed\n", g.Moves, g.Recorded, g.Replayed)
		if !g.Deterministic {
			fmt.Fprintf(w, "  Diverged at seq %d\n", g.DivergedAt)
		}
		if g.Interrupted {
			fmt.Fprintln(w, "  Warning: last move stopped mid-cascade")
		}
		if g.AbortedAt > 0 {
			fmt.Fprintf(w, "  Warning: move %d was aborted before the board settled\n", g.AbortedAt)
		}
		if g.Unlogged > 0 {
			fmt.Fprintf(w, "  Warning: %d move(s) have events but no move record\n", g.Unlogged)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "\u2713 All games verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "\u2717 Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
