package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tilematch/internal/engine"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	Database string
	LevelDir string
	Level    string
	Seed     int64
}

// NewGameResult describes a created game.
type NewGameResult struct {
	GameID     string   `json:"game_id"`
	Level      string   `json:"level"`
	Seed       int64    `json:"seed"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Kinds      int      `json:"kinds"`
	Rows       []string `json:"rows"`
	Collisions int      `json:"collisions"`
	Unresolved int      `json:"unresolved"`
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a game from a level",
		Long: `Start a new game from a CUE level definition and store it.

The starting board is filled from the game seed with no ready-made
matches. --seed overrides the level's seed.

Examples:
  tilematch new --db ./games.db --level ./levels
  tilematch new --db ./games.db --level ./levels --name intro --seed 7`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *int64
			if cmd.Flags().Changed("seed") {
				seed = &opts.Seed
			}
			return runNew(cmd.Context(), opts, seed, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.LevelDir, "level", "", "directory of CUE level files (required)")
	_ = cmd.MarkFlagRequired("level")
	cmd.Flags().StringVar(&opts.Level, "name", "", "level name (default: first level by name)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "override the level seed")

	return cmd
}

func runNew(ctx context.Context, opts *NewOptions, seed *int64, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	lvl, err := loadLevel(opts.LevelDir, opts.Level)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Using level %s from %s", lvl.Name, opts.LevelDir)

	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := lvl.GameConfig(engine.UUIDv7Generator{}.Generate(), seed)
	gameOpts := append(lvl.Options(),
		engine.WithScheduler(engine.ImmediateScheduler{}),
		engine.WithRecorder(st),
		engine.WithLogger(formatter.Logger()),
	)
	r, report, err := engine.NewGame(ctx, cfg, nil, nil, gameOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start game", err)
	}
	if err := writeGame(ctx, st, lvl, cfg, r); err != nil {
		return WrapExitError(ExitCommandError, "failed to store game", err)
	}

	result := NewGameResult{
		GameID:     cfg.ID,
		Level:      lvl.Name,
		Seed:       cfg.Seed,
		Width:      r.Grid().Width(),
		Height:     r.Grid().Height(),
		Kinds:      cfg.Kinds,
		Rows:       r.Grid().Layout(),
		Collisions: report.Collisions,
		Unresolved: len(report.Unresolved),
	}
	if formatter.IsJSON() {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, GameID: cfg.ID})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Created game %s\n", result.GameID)
	fmt.Fprintf(&sb, "  level %s, %dx%d, %d kinds, seed %d\n",
		result.Level, result.Width, result.Height, result.Kinds, result.Seed)
	if result.Unresolved > 0 {
		fmt.Fprintf(&sb, "  warning: %d slot(s) start inside a match\n", result.Unresolved)
	}
	sb.WriteByte('\n')
	renderBoard(&sb, result.Rows)
	fmt.Fprint(formatter.Writer, sb.String())
	return nil
}
