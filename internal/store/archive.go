// Package store keeps finished games in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/benbeisheim/smartchess/internal/model"
)

var ErrNotFound = errors.New("game not found in archive")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	white_name  TEXT NOT NULL,
	white_kind  TEXT NOT NULL,
	black_name  TEXT NOT NULL,
	black_kind  TEXT NOT NULL,
	result      TEXT NOT NULL,
	winner      TEXT NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS plies (
	game_id   TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	ply       INTEGER NOT NULL,
	piece     TEXT NOT NULL,
	color     TEXT NOT NULL,
	from_sq   TEXT NOT NULL,
	to_sq     TEXT NOT NULL,
	captured  TEXT NOT NULL,
	notation  TEXT NOT NULL,
	PRIMARY KEY (game_id, ply)
);`

type Side struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// GameSummary is one archived game without its moves.
type GameSummary struct {
	ID         string       `json:"id"`
	White      Side         `json:"white"`
	Black      Side         `json:"black"`
	Result     model.Result `json:"result"`
	Winner     model.Color  `json:"winner,omitempty"`
	FinishedAt time.Time    `json:"finishedAt"`
}

// PlyRecord is the archived form of a model.Ply.
type PlyRecord struct {
	Piece    model.PieceType `json:"piece"`
	Color    model.Color     `json:"color"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Captured model.PieceType `json:"captured,omitempty"`
	Notation string          `json:"notation"`
}

type GameRecord struct {
	GameSummary
	Plies []PlyRecord `json:"plies"`
}

// NewPlyRecord converts an applied ply for storage.
func NewPlyRecord(p model.Ply) PlyRecord {
	rec := PlyRecord{
		Piece:    p.Piece.Type,
		Color:    p.Piece.Color,
		From:     p.From.String(),
		To:       p.To.String(),
		Notation: p.Notation,
	}
	if p.CapturedPiece != nil {
		rec.Captured = p.CapturedPiece.Type
	}
	return rec
}

type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive at path. ":memory:" gives a private
// in-memory archive.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serialises writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// dsn turns on foreign keys for every connection the pool opens, so replacing
// a game also drops its old plies.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveGame stores a finished game, replacing any earlier record with the
// same id.
func (a *Archive) SaveGame(ctx context.Context, rec GameRecord) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("replace game %s: %w", rec.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, white_name, white_kind, black_name, black_kind, result, winner, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.White.Name, rec.White.Kind, rec.Black.Name, rec.Black.Kind,
		string(rec.Result), string(rec.Winner), rec.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert game %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO plies (game_id, ply, piece, color, from_sq, to_sq, captured, notation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range rec.Plies {
		if _, err := stmt.ExecContext(ctx, rec.ID, i+1, string(p.Piece), string(p.Color),
			p.From, p.To, string(p.Captured), p.Notation); err != nil {
			return fmt.Errorf("insert ply %d of game %s: %w", i+1, rec.ID, err)
		}
	}
	return tx.Commit()
}

// ListGames returns archived games, most recently finished first.
func (a *Archive) ListGames(ctx context.Context) ([]GameSummary, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, white_name, white_kind, black_name, black_kind, result, winner, finished_at
		 FROM games ORDER BY finished_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []GameSummary{}
	for rows.Next() {
		g, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(s scanner) (GameSummary, error) {
	var (
		g              GameSummary
		result, winner string
		finished       int64
	)
	if err := s.Scan(&g.ID, &g.White.Name, &g.White.Kind, &g.Black.Name, &g.Black.Kind,
		&result, &winner, &finished); err != nil {
		return GameSummary{}, err
	}
	g.Result = model.Result(result)
	g.Winner = model.Color(winner)
	g.FinishedAt = time.UnixMilli(finished).UTC()
	return g, nil
}

// LoadGame returns an archived game with its plies in order.
func (a *Archive) LoadGame(ctx context.Context, id string) (GameRecord, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, white_name, white_kind, black_name, black_kind, result, winner, finished_at
		 FROM games WHERE id = ?`, id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, ErrNotFound
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("load game %s: %w", id, err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT piece, color, from_sq, to_sq, captured, notation
		 FROM plies WHERE game_id = ? ORDER BY ply`, id)
	if err != nil {
		return GameRecord{}, fmt.Errorf("load plies of %s: %w", id, err)
	}
	defer rows.Close()

	rec := GameRecord{GameSummary: summary, Plies: []PlyRecord{}}
	for rows.Next() {
		var p PlyRecord
		var piece, color, captured string
		if err := rows.Scan(&piece, &color, &p.From, &p.To, &captured, &p.Notation); err != nil {
			return GameRecord{}, err
		}
		p.Piece = model.PieceType(piece)
		p.Color = model.Color(color)
		p.Captured = model.PieceType(captured)
		rec.Plies = append(rec.Plies, p)
	}
	return rec, rows.Err()
}
