package store

import (
	"context"
	"fmt"

	"github.com/roach88/tilematch/internal/ir"
)

// WriteGame inserts a game header.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// Other constraint violations (e.g., NOT NULL) will still return errors.
//
// The level is serialized to canonical JSON per RFC 8785.
func (s *Store) WriteGame(ctx context.Context, g ir.Game) error {
	levelJSON, err := marshalObject(g.Level)
	if err != nil {
		return fmt.Errorf("write game: marshal level: %w", err)
	}

	engineVersion := g.Engine
	if engineVersion == "" {
		engineVersion = ir.EngineVersion
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games
		(id, name, seed, width, height, kinds, level, level_hash, board_hash, engine_version, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		g.ID,
		g.Name,
		g.Seed,
		g.Width,
		g.Height,
		g.Kinds,
		levelJSON,
		g.LevelHash,
		g.BoardHash,
		engineVersion,
		ir.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("write game: %w", err)
	}
	return nil
}

// WriteMove inserts a move record.
// Uses ON CONFLICT(game_id, number) DO NOTHING, so a replayed move that is
// already stored is ignored.
func (s *Store) WriteMove(ctx context.Context, m ir.Move) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moves
		(game_id, number, a_col, a_row, b_col, b_row, outcome, passes, board_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, number) DO NOTHING
	`,
		m.GameID,
		m.Number,
		m.A[0], m.A[1],
		m.B[0], m.B[1],
		string(m.Outcome),
		m.Passes,
		m.BoardHash,
	)
	if err != nil {
		return fmt.Errorf("write move: %w", err)
	}
	return nil
}

// WriteEvent inserts an event record.
// Uses ON CONFLICT DO NOTHING for idempotency. The ID is content-addressed,
// so rewriting the same event is silently ignored. A different event at an
// already used (game_id, seq) is ignored too; VerifyReplay is how callers
// detect that kind of divergence.
func (s *Store) WriteEvent(ctx context.Context, ev ir.Event) error {
	payloadJSON, err := marshalObject(ev.Payload)
	if err != nil {
		return fmt.Errorf("write event: marshal payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(id, game_id, seq, move, pass, type, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ev.ID,
		ev.GameID,
		ev.Seq,
		ev.Move,
		ev.Pass,
		string(ev.Type),
		payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Record implements engine.Recorder, so a Store can be handed straight to
// the resolver.
func (s *Store) Record(ctx context.Context, ev ir.Event) error {
	return s.WriteEvent(ctx, ev)
}
