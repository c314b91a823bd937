package engine

import (
	"context"
	"fmt"

	"github.com/roach88/tilematch/internal/board"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/match"
	"github.com/roach88/tilematch/internal/promote"
)

// GameConfig is everything needed to build the same starting board twice.
type GameConfig struct {
	ID     string
	Name   string
	Width  int
	Height int
	Kinds  int
	Seed   int64

	// Layout, when set, is the starting board (top row first, '.' empty)
	// and replaces random fill. Width and Height may be left zero.
	Layout []string

	// Promotion defaults to promote.DefaultConfig when MinSize is zero.
	Promotion promote.Config

	// MaxPasses defaults to DefaultMaxPasses when zero.
	MaxPasses int
}

// NewGame builds the starting board for cfg and a Resolver over it, then
// records a game_started event. hooks and bomb may be nil.
//
// A fixed layout with gaps or matches is settled right after game_started,
// without pauses, so every game begins on a full board with no match. Its
// steps are recorded under move 0.
//
// Options are applied after the ones derived from cfg, so callers can
// override the scheduler, recorder or clock.
func NewGame(ctx context.Context, cfg GameConfig, hooks VisualHook, bomb BombHook, opts ...Option) (*Resolver, SetupReport, error) {
	src := NewSeededSource(cfg.Seed)
	det := match.NewDetector()

	g, report, err := startingGrid(cfg, src, det)
	if err != nil {
		return nil, report, err
	}

	pcfg := cfg.Promotion
	if pcfg.MinSize == 0 {
		pcfg = promote.DefaultConfig()
	}
	base := []Option{WithGameID(cfg.ID)}
	if cfg.MaxPasses > 0 {
		base = append(base, WithMaxPasses(cfg.MaxPasses))
	}

	r, err := New(g, det, promote.New(pcfg, bomb), hooks, src, cfg.Kinds, append(base, opts...)...)
	if err != nil {
		return nil, report, err
	}

	hash, err := HashBoard(g)
	if err != nil {
		return nil, report, err
	}
	if err := r.emit(ctx, 0, ir.EventGameStarted, ir.Object{
		"width":      ir.Int(g.Width()),
		"height":     ir.Int(g.Height()),
		"kinds":      ir.Int(cfg.Kinds),
		"seed":       ir.Int(cfg.Seed),
		"rows":       ir.Strings(g.Layout()),
		"collisions": ir.Int(report.Collisions),
		"board_hash": ir.String(hash),
	}); err != nil {
		return nil, report, err
	}
	if !r.settled() {
		if err := r.settleLayout(ctx); err != nil {
			return nil, report, fmt.Errorf("layout: %w", err)
		}
	}
	r.logger.Info("game started",
		"game", cfg.ID,
		"name", cfg.Name,
		"width", g.Width(),
		"height", g.Height(),
		"kinds", cfg.Kinds,
		"collisions", report.Collisions,
	)
	return r, report, nil
}

func startingGrid(cfg GameConfig, src KindSource, det *match.Detector) (*board.Grid, SetupReport, error) {
	if len(cfg.Layout) == 0 {
		return Initialize(cfg.Width, cfg.Height, cfg.Kinds, src, det)
	}
	g, err := board.ParseLayout(cfg.Layout)
	if err != nil {
		return nil, SetupReport{}, fmt.Errorf("layout: %w", err)
	}
	if (cfg.Width != 0 && cfg.Width != g.Width()) || (cfg.Height != 0 && cfg.Height != g.Height()) {
		return nil, SetupReport{}, fmt.Errorf("layout: is %dx%d, config says %dx%d",
			g.Width(), g.Height(), cfg.Width, cfg.Height)
	}
	for c, p := range g.Pieces() {
		if int(p.Kind) >= cfg.Kinds {
			return nil, SetupReport{}, fmt.Errorf("layout: kind %s at %s exceeds %d kinds", p.Kind, c, cfg.Kinds)
		}
	}
	return g, SetupReport{}, nil
}

// settleLayout settles the starting board with the scheduler's pauses
// skipped.
func (r *Resolver) settleLayout(ctx context.Context) error {
	sched := r.scheduler
	r.scheduler = ImmediateScheduler{}
	defer func() { r.scheduler = sched }()

	res, err := r.Settle(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("layout settled", "game", r.gameID, "passes", res.Passes, "created", res.Created)
	return nil
}
