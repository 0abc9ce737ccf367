// Package database provides SQLite storage for admin sessions and the
// deploy run history. The content documents themselves live in JSON files,
// see the store package.
package database

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/akopylova/kabinet/internal/model"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		token_hash TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS deploy_runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		result TEXT DEFAULT '',
		log TEXT DEFAULT ''
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// --- Session Methods ---

// CreateSession mints a new random session token, stores its hash and
// returns the token for the cookie. The raw token is never persisted.
func (db *DB) CreateSession() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(raw)
	_, err := db.conn.Exec("INSERT INTO sessions (token_hash, created_at) VALUES (?, ?)",
		hashToken(token), time.Now())
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// ValidSession reports whether the token matches a stored session.
func (db *DB) ValidSession(token string) bool {
	if token == "" {
		return false
	}
	var one int
	err := db.conn.QueryRow("SELECT 1 FROM sessions WHERE token_hash = ?", hashToken(token)).Scan(&one)
	return err == nil
}

// DeleteSession removes the session for the given token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token_hash = ?", hashToken(token))
	return err
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// --- Deploy Run Methods ---

// StartRun records the beginning of a deploy run.
func (db *DB) StartRun(id string, startedAt time.Time) error {
	_, err := db.conn.Exec("INSERT INTO deploy_runs (id, started_at) VALUES (?, ?)", id, startedAt)
	return err
}

// FinishRun records the outcome and captured log of a deploy run.
func (db *DB) FinishRun(id, result, log string, finishedAt time.Time) error {
	_, err := db.conn.Exec("UPDATE deploy_runs SET finished_at = ?, result = ?, log = ? WHERE id = ?",
		finishedAt, result, log, id)
	return err
}

// RecentRuns returns the most recent deploy runs, newest first.
func (db *DB) RecentRuns(limit int) ([]model.DeployRun, error) {
	rows, err := db.conn.Query(
		"SELECT id, started_at, finished_at, result, log FROM deploy_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.DeployRun
	for rows.Next() {
		var r model.DeployRun
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &r.Result, &r.Log); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
