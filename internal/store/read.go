package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tilematch/internal/ir"
	"github.com/roach88/tilematch/internal/query"
)

const gameColumns = `id, name, seed, width, height, kinds, level, level_hash, board_hash, engine_version`

// eventColumns is the column order scanEvent expects.
var eventColumns = []string{"id", "game_id", "seq", "move", "pass", "type", "payload"}

// ReadGame retrieves a game header by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadGame(ctx context.Context, id string) (ir.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	return scanGame(row)
}

// ListGames returns all game headers ordered by ID. UUIDv7 IDs sort by
// creation time.
func (s *Store) ListGames(ctx context.Context) ([]ir.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []ir.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

// LatestGame returns the most recently created game.
// Returns sql.ErrNoRows if the store holds no games.
func (s *Store) LatestGame(ctx context.Context) (ir.Game, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		ORDER BY id COLLATE BINARY DESC
		LIMIT 1
	`)
	return scanGame(row)
}

// ReadMoves returns the moves of a game ordered by number.
// Returns an empty slice (not nil) if the game has no moves.
func (s *Store) ReadMoves(ctx context.Context, gameID string) ([]ir.Move, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, number, a_col, a_row, b_col, b_row, outcome, passes, board_hash
		FROM moves
		WHERE game_id = ?
		ORDER BY number ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	moves := []ir.Move{}
	for rows.Next() {
		var m ir.Move
		var outcome string
		if err := rows.Scan(&m.GameID, &m.Number, &m.A[0], &m.A[1], &m.B[0], &m.B[1],
			&outcome, &m.Passes, &m.BoardHash); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.Outcome = ir.MoveOutcome(outcome)
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return moves, nil
}

// ReadEvents returns every event of a game ordered by seq.
// Returns an empty slice (not nil) if no events exist.
func (s *Store) ReadEvents(ctx context.Context, gameID string) ([]ir.Event, error) {
	return s.queryEvents(ctx, `
		SELECT id, game_id, seq, move, pass, type, payload
		FROM events
		WHERE game_id = ?
		ORDER BY seq ASC
	`, gameID)
}

// ReadMoveEvents returns the events recorded while resolving one move.
func (s *Store) ReadMoveEvents(ctx context.Context, gameID string, move int64) ([]ir.Event, error) {
	return s.queryEvents(ctx, `
		SELECT id, game_id, seq, move, pass, type, payload
		FROM events
		WHERE game_id = ? AND move = ?
		ORDER BY seq ASC
	`, gameID, move)
}

// QueryEvents returns the events of a game matching filter, ordered by seq.
// A nil filter returns every event.
func (s *Store) QueryEvents(ctx context.Context, gameID string, filter query.Predicate) ([]ir.Event, error) {
	q, args, err := query.Compile(query.Select{
		From:    "events",
		Columns: eventColumns,
		Filter:  query.All(query.Equals{Field: "game_id", Value: ir.String(gameID)}, filter),
	})
	if err != nil {
		return nil, err
	}
	return s.queryEvents(ctx, q, args...)
}

// ReadEvent retrieves a single event by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadEvent(ctx context.Context, id string) (ir.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, game_id, seq, move, pass, type, payload
		FROM events
		WHERE id = ?
	`, id)
	return scanEvent(row)
}

// LastSeq returns the highest seq recorded for a game, 0 if none.
func (s *Store) LastSeq(ctx context.Context, gameID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events WHERE game_id = ?`, gameID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]ir.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (ir.Game, error) {
	var g ir.Game
	var levelJSON string
	err := row.Scan(&g.ID, &g.Name, &g.Seed, &g.Width, &g.Height, &g.Kinds,
		&levelJSON, &g.LevelHash, &g.BoardHash, &g.Engine)
	if err != nil {
		if err == sql.ErrNoRows {
			return g, err
		}
		return g, fmt.Errorf("scan game: %w", err)
	}
	g.Level, err = unmarshalObject(levelJSON)
	if err != nil {
		return g, fmt.Errorf("scan game %s: %w", g.ID, err)
	}
	return g, nil
}

func scanEvent(row scanner) (ir.Event, error) {
	var ev ir.Event
	var typ, payloadJSON string
	err := row.Scan(&ev.ID, &ev.GameID, &ev.Seq, &ev.Move, &ev.Pass, &typ, &payloadJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return ev, err
		}
		return ev, fmt.Errorf("scan event: %w", err)
	}
	ev.Type = ir.EventType(typ)
	ev.Payload, err = unmarshalObject(payloadJSON)
	if err != nil {
		return ev, fmt.Errorf("scan event %s: %w", ev.ID, err)
	}
	return ev, nil
}
