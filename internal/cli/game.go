package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/level"
	"github.com/roach88/tilematch/internal/store"
)

// openStore opens the game database.
func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// loadLevel loads the levels in dir and returns the one called name, or the
// first by name when name is empty.
func loadLevel(dir, name string) (*level.Level, error) {
	result, errs := level.Load(dir, level.LoadModeFailFast)
	if len(errs) > 0 {
		var loadErr *level.LoadError
		if errors.As(errs[0], &loadErr) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		return nil, WrapExitError(ExitCommandError, "invalid level", errs[0])
	}
	if name == "" {
		return result.Levels[0], nil
	}
	lvl, ok := result.Find(name)
	if !ok {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("level %q not found in %s (have %s)", name, dir, strings.Join(result.Names(), ", ")))
	}
	return lvl, nil
}

// resolveGameID returns id, or the most recently created game when id is
// empty.
func resolveGameID(ctx context.Context, st *store.Store, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	g, err := st.LatestGame(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", NewExitError(ExitCommandError, "no games in database")
	}
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to find latest game", err)
	}
	return g.ID, nil
}

// gameConfig rebuilds the engine configuration a stored game was created
// with.
func gameConfig(g ir.Game) (*level.Level, engine.GameConfig, error) {
	lvl, err := level.FromObject(g.Level)
	if err != nil {
		return nil, engine.GameConfig{}, WrapExitError(ExitCommandError, fmt.Sprintf("game %s: stored level", g.ID), err)
	}
	cfg := lvl.GameConfig(g.ID, &g.Seed)
	cfg.Name = g.Name
	return lvl, cfg, nil
}

// restoreGame rebuilds a stored game by replaying its moves. Replayed events
// go back to the store, where they are no-ops; later moves append after
// them.
func restoreGame(ctx context.Context, st *store.Store, gameID string, logger *slog.Logger) (*engine.Resolver, store.GameLog, error) {
	log, err := st.LoadGame(ctx, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, log, NewExitError(ExitCommandError, fmt.Sprintf("game not found: %s", gameID))
	}
	if err != nil {
		return nil, log, WrapExitError(ExitCommandError, "failed to load game", err)
	}

	lvl, cfg, err := gameConfig(log.Game)
	if err != nil {
		return nil, log, err
	}
	opts := append(lvl.Options(), engine.WithRecorder(st), engine.WithLogger(logger))
	r, err := engine.Replay(ctx, cfg, log.Moves, opts...)
	if err != nil {
		return nil, log, WrapExitError(ExitFailure, fmt.Sprintf("game %s does not replay", gameID), err)
	}
	if got := r.Clock().Current(); got != log.LastSeq {
		return nil, log, NewExitError(ExitFailure,
			fmt.Sprintf("game %s: replay produced %d events, log has %d", gameID, got, log.LastSeq))
	}
	return r, log, nil
}

// writeGame stores the header of a freshly created game.
func writeGame(ctx context.Context, st *store.Store, lvl *level.Level, cfg engine.GameConfig, r *engine.Resolver) error {
	boardHash, err := engine.HashBoard(r.Grid())
	if err != nil {
		return err
	}
	levelHash, err := lvl.Hash()
	if err != nil {
		return err
	}
	return st.WriteGame(ctx, ir.Game{
		ID:        cfg.ID,
		Name:      cfg.Name,
		Seed:      cfg.Seed,
		Width:     r.Grid().Width(),
		Height:    r.Grid().Height(),
		Kinds:     cfg.Kinds,
		Level:     lvl.Object(),
		LevelHash: levelHash,
		BoardHash: boardHash,
		Engine:    ir.EngineVersion,
	})
}

// writeMove logs one swap request with the board hash after it.
func writeMove(ctx context.Context, st *store.Store, gameID string, a, b board.Coord, res engine.Result, g *board.Grid) error {
	boardHash, err := engine.HashBoard(g)
	if err != nil {
		return err
	}
	return st.WriteMove(ctx, ir.Move{
		GameID:    gameID,
		Number:    res.Move,
		A:         [2]int{a.Col, a.Row},
		B:         [2]int{b.Col, b.Row},
		Outcome:   res.Outcome,
		Passes:    res.Passes,
		BoardHash: boardHash,
	})
}

// renderBoard writes rows (top row first) with row numbers on the left and
// column numbers underneath.
func renderBoard(sb *strings.Builder, rows []string) {
	height := len(rows)
	for i, row := range rows {
		fmt.Fprintf(sb, "%3d  %s\n", height-1-i, row)
	}
	if height == 0 {
		return
	}
	sb.WriteString("     ")
	for col := range len(rows[0]) {
		sb.WriteByte(byte('0' + col%10))
	}
	sb.WriteByte('\n')
}

// errorCode classifies an engine error for output.
func errorCode(err error) string {
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	if board.IsOutOfBounds(err) {
		return "OUT_OF_BOUNDS"
	}
	return "ERROR"
}
