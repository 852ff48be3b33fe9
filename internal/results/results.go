// internal/results/results.go
//
// Round and game history backed by SQLite.
// Responsibilities:
//   - Opening SQLite with safe defaults (busy timeout, WAL, foreign keys).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Recording finished rounds/games and serving history and the leaderboard.
//
// The default DSN is a shared in-memory database, so history lives as long
// as the process does.

package results

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/game"
)

//go:embed sql/*.sql
var migrations embed.FS

// DB is the results store. It satisfies session.Recorder.
type DB struct {
	db *sql.DB
}

/**
 * Open opens (and creates if missing) the results database and migrates it.
 *
 * - Plain file paths get their parent directory created.
 * - Busy timeout and WAL journaling are appended to the DSN.
 * - One connection: keeps a shared in-memory database alive and serializes writers.
 */
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("results: empty dsn")
	}
	if !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:") {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close releases the database.
func (d *DB) Close() error { return d.db.Close() }

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }

/**
 * migrate applies sql/*.sql from fsys in lexical order.
 *
 * - A _migrations table records applied files.
 * - Each file and its _migrations row commit in one transaction, so a
 *   failing file leaves no trace and is retried on the next Open.
 */
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(fsys, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* --------------------------- rounds and games --------------------------- */

// Round is one recorded round.
type Round struct {
	Level     int       `json:"level"`
	Outcome   string    `json:"outcome"`
	Flips     int       `json:"flips"`
	Seconds   int       `json:"seconds"`
	CreatedAt time.Time `json:"createdAt"`
}

// LBRow is one completed game on the leaderboard.
type LBRow struct {
	GameID       string    `json:"gameId"`
	TotalFlips   int       `json:"totalFlips"`
	TotalSeconds int       `json:"totalSeconds"`
	CreatedAt    time.Time `json:"createdAt"`
}

// InsertRound records a finished round for a session.
func (d *DB) InsertRound(ctx context.Context, sessionID string, r game.RoundResult) error {
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO rounds (session_id, level, outcome, flips, seconds)
        VALUES (?, ?, ?, ?, ?)`,
		sessionID, r.Level, string(r.Outcome), r.Flips, r.Seconds,
	)
	return err
}

// InsertGame records a completed game.
func (d *DB) InsertGame(ctx context.Context, sessionID string, t game.GameTotals) error {
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO games (session_id, total_flips, total_seconds)
        VALUES (?, ?, ?)`,
		sessionID, t.TotalGameFlips, t.TotalGameTime,
	)
	return err
}

/**
 * Rounds returns a session's rounds, oldest first.
 * Default limit is 100 if not specified.
 */
func (d *DB) Rounds(ctx context.Context, sessionID string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := d.db.QueryContext(ctx, `
        SELECT level, outcome, flips, seconds, created_at
        FROM rounds
        WHERE session_id=?
        ORDER BY id ASC
        LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Round, 0)
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.Level, &r.Outcome, &r.Flips, &r.Seconds, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

/**
 * Leaderboard returns the fastest completed games.
 *
 * - Ordered by total seconds ASC, then total flips ASC, then insertion order.
 * - Default limit is 20 if not specified.
 */
func (d *DB) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, `
        SELECT session_id, total_flips, total_seconds, created_at
        FROM games
        ORDER BY total_seconds ASC, total_flips ASC, id ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.GameID, &r.TotalFlips, &r.TotalSeconds, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
