package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zachkp/termfolio/internal/terminal"
)

// SQLite keeps session entries and the command log in one database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	createSessionTable := `
	CREATE TABLE IF NOT EXISTS session_storage (
		session_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL,  -- unix milliseconds
		PRIMARY KEY (session_id, key)
	)`
	if _, err := s.db.Exec(createSessionTable); err != nil {
		return fmt.Errorf("failed to create session_storage table: %w", err)
	}

	createCommandTable := `
	CREATE TABLE IF NOT EXISTS command_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,  -- hashed instead of raw IP
		session_id TEXT NOT NULL,
		command TEXT NOT NULL,
		success INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`
	if _, err := s.db.Exec(createCommandTable); err != nil {
		return fmt.Errorf("failed to create command_log table: %w", err)
	}

	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_command_log_created ON command_log(created_at)`); err != nil {
		return fmt.Errorf("failed to index command_log: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Session returns the storage scoped to session id.
func (s *SQLite) Session(id string) terminal.Storage {
	return &sqliteSession{db: s.db, id: id}
}

// SessionCount is the number of sessions holding any stored entry.
func (s *SQLite) SessionCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT session_id) FROM session_storage`).Scan(&n)
	return n, err
}

type sqliteSession struct {
	db *sql.DB
	id string
}

func (s *sqliteSession) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM session_storage WHERE session_id = ? AND key = ?`, s.id, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *sqliteSession) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_storage (session_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.id, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *sqliteSession) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM session_storage WHERE session_id = ? AND key = ?`, s.id, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}
