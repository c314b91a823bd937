package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	GameID   string
}

// ShowResult is the current state of a stored game.
type ShowResult struct {
	GameID      string   `json:"game_id"`
	Level       string   `json:"level"`
	Seed        int64    `json:"seed"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Kinds       int      `json:"kinds"`
	Moves       int64    `json:"moves"`
	Generation  uint64   `json:"generation"`
	Rows        []string `json:"rows"`
	Specials    ir.Array `json:"specials"`
	BoardHash   string   `json:"board_hash"`
	Verified    bool     `json:"verified"`
	Interrupted bool     `json:"interrupted,omitempty"`
	AbortedAt   int64    `json:"aborted_at,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a game's current board",
		Long: `Rebuild a stored game from its moves and print the board.

Verified is true when the rebuilt board hash equals the hash stored with
the last move (or with the game when it has no moves).

Examples:
  tilematch show --db ./games.db
  tilematch show --db ./games.db --game 0192f1d0-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.GameID, "game", "", "game ID (default: latest game)")

	return cmd
}

func runShow(ctx context.Context, opts *ShowOptions, cmd *cobra.Command) error {
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

	hash, err := engine.HashBoard(r.Grid())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash board", err)
	}
	want := log.Game.BoardHash
	if n := len(log.Moves); n > 0 {
		want = log.Moves[n-1].BoardHash
	}

	snap := r.Snapshot()
	result := ShowResult{
		GameID:      gameID,
		Level:       log.Game.Name,
		Seed:        log.Game.Seed,
		Width:       log.Game.Width,
		Height:      log.Game.Height,
		Kinds:       log.Game.Kinds,
		Moves:       snap.Moves,
		Generation:  snap.Generation,
		Rows:        snap.Rows,
		Specials:    snap.Specials,
		BoardHash:   hash,
		Verified:    hash == want,
		Interrupted: log.Interrupted,
		AbortedAt:   log.AbortedAt,
	}
	if formatter.IsJSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, GameID: gameID})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Game %s\n", result.GameID)
	fmt.Fprintf(&sb, "  level %s, %dx%d, %d kinds, seed %d\n",
		result.Level, result.Width, result.Height, result.Kinds, result.Seed)
	fmt.Fprintf(&sb, "  %d move(s), generation %d\n", result.Moves, result.Generation)
	if len(result.Specials) > 0 {
		data, _ := ir.MarshalValue(result.Specials)
		fmt.Fprintf(&sb, "  specials %s\n", data)
	}
	if result.Interrupted {
		sb.WriteString("  warning: the last move stopped mid-cascade\n")
	}
	if result.AbortedAt > 0 {
		fmt.Fprintf(&sb, "  warning: move %d was aborted; the game cannot continue\n", result.AbortedAt)
	}
	if !result.Verified {
		fmt.Fprintf(&sb, "  warning: board hash %s does not match the log (%s)\n", short(hash), short(want))
	}
	sb.WriteByte('\n')
	renderBoard(&sb, result.Rows)
	fmt.Fprint(formatter.Writer, sb.String())
	return nil
}

// short abbreviates a hash for text output.
func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
