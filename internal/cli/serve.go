package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tilematch/internal/engine"
	"github.com/roach88/tilematch/internal/feed"
	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/level"
	"github.com/roach88/tilematch/internal/store"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	LevelDir string
	Level    string
	Addr     string
	Database string
	Seed     int64
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live game over websocket",
		Long: `Start a game and serve it to websocket clients.

Clients connect to /ws, receive a snapshot, then every removed, created
and large_match event as the board resolves with the level's delays. A
client sends {"type":"swap","a":[c,r],"b":[c,r],"generation":N} to move;
the outcome reaches every client as a move message. GET /snapshot returns
the current board as JSON.

With --db the game and its moves are stored and can be inspected with
show, trace and replay.

Examples:
  tilematch serve --level ./levels
  tilematch serve --level ./levels --name intro --addr :9000 --db ./games.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *int64
			if cmd.Flags().Changed("seed") {
				seed = &opts.Seed
			}
			return runServe(cmd.Context(), opts, seed, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LevelDir, "level", "", "directory of CUE level files (required)")
	_ = cmd.MarkFlagRequired("level")
	cmd.Flags().StringVar(&opts.Level, "name", "", "level name (default: first level by name)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store the game in this SQLite database")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "override the level seed")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, seed *int64, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := formatter.Logger()

	lvl, err := loadLevel(opts.LevelDir, opts.Level)
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.Database != "" {
		if st, err = openStore(opts.Database); err != nil {
			return err
		}
		defer st.Close()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := newGameServer(ctx, lvl, lvl.GameConfig(engine.UUIDv7Generator{}.Generate(), seed), st, logger)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              opts.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sessionDone := make(chan struct{})
	go func() {
		defer close(sessionDone)
		_ = srv.session.Run(ctx)
	}()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- httpSrv.ListenAndServe()
	}()
	fmt.Fprintf(formatter.Writer, "Serving game %s (level %s) on %s\n", srv.gameID, lvl.Name, opts.Addr)

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = WrapExitError(ExitCommandError, "listen failed", err)
		}
	}

	logger.Info("shutting down", "game", srv.gameID)
	srv.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	srv.session.Stop()
	<-sessionDone
	return serveErr
}

// gameServer is one live game behind a websocket feed.
type gameServer struct {
	gameID  string
	hub     *feed.Hub
	session *engine.Session
	store   *store.Store // nil when moves are not stored
	logger  *slog.Logger
}

// newGameServer starts the game for cfg with the hub as its visual and bomb
// hooks. When st is set the game header, events and moves are stored.
func newGameServer(ctx context.Context, lvl *level.Level, cfg engine.GameConfig, st *store.Store, logger *slog.Logger) (*gameServer, error) {
	s := &gameServer{
		gameID: cfg.ID,
		hub:    feed.NewHub(logger),
		store:  st,
		logger: logger,
	}

	opts := append(lvl.Options(), engine.WithLogger(logger))
	if st != nil {
		opts = append(opts, engine.WithRecorder(st))
	}
	r, report, err := engine.NewGame(ctx, cfg, s.hub, s.hub, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start game", err)
	}
	if len(report.Unresolved) > 0 {
		logger.Warn("starting board has matches", "game", cfg.ID, "slots", len(report.Unresolved))
	}
	if st != nil {
		if err := writeGame(ctx, st, lvl, cfg, r); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to store game", err)
		}
	}

	s.session = engine.NewSession(r,
		engine.WithSessionLogger(logger),
		engine.WithMoveFunc(s.onMove),
	)
	return s, nil
}

// onMove stores the move, then forwards it to the feed. Stale and closed
// requests never reached the resolver and are not moves.
func (s *gameServer) onMove(req engine.SwapRequest, reply engine.SwapReply, after engine.Snapshot) {
	if s.store != nil && reply.Result.Move > 0 {
		if err := s.writeMove(req, reply.Result, after); err != nil {
			s.logger.Error("failed to store move", "game", s.gameID, "move", reply.Result.Move, "error", err)
		}
	}
	s.hub.OnMove(req, reply, after)
}

func (s *gameServer) writeMove(req engine.SwapRequest, res engine.Result, after engine.Snapshot) error {
	boardHash, err := ir.BoardHash(after.Rows, after.Specials)
	if err != nil {
		return err
	}
	return s.store.WriteMove(context.Background(), ir.Move{
		GameID:    s.gameID,
		Number:    res.Move,
		A:         [2]int{req.A.Col, req.A.Row},
		B:         [2]int{req.B.Col, req.B.Row},
		Outcome:   res.Outcome,
		Passes:    res.Passes,
		BoardHash: boardHash,
	})
}

// routes serves the websocket feed on /ws and the board on /snapshot.
func (s *gameServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", feed.NewHandler(s.hub, s.session))
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	return mux
}

func (s *gameServer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Debug("snapshot write failed", "error", err)
	}
}
