// Package storage owns the SQLite connection for the backlog.
//
// It opens the database with WAL mode and foreign keys enabled and runs
// the idempotent schema migration. All data access goes through
// internal/repository; this package only hands out the *sql.DB.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Config holds storage configuration.
type Config struct {
	// DBPath is the SQLite database file. ":memory:" is accepted for tests.
	DBPath string
}

// DefaultConfig returns the default configuration, storing the database
// under the user's home directory.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DBPath: filepath.Join(home, ".storydeck", "storydeck.db"),
	}
}

// DB wraps the shared database handle. It is safe for concurrent use.
type DB struct {
	sql *sql.DB
}

// Open creates the data directory if needed, opens SQLite, applies
// pragmas, and runs migrations.
func Open(cfg Config) (*DB, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// Pragmas are per-connection and the cascade delete needs
	// foreign_keys on every one, so keep the pool at a single
	// connection. This also makes ":memory:" a single database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: pragma %q: %w", p, err)
		}
	}

	s := &DB{sql: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration: %w", err)
	}
	return s, nil
}

// SQL exposes the underlying handle for the repository layer.
func (s *DB) SQL() *sql.DB {
	return s.sql
}

// Close closes the underlying database connection.
func (s *DB) Close() error {
	return s.sql.Close()
}

func (s *DB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS user_stories (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			persona     TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS acceptance_criteria (
			id            TEXT PRIMARY KEY,
			user_story_id TEXT NOT NULL REFERENCES user_stories(id) ON DELETE CASCADE,
			description   TEXT NOT NULL,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_criteria_story  ON acceptance_criteria(user_story_id);
		CREATE INDEX IF NOT EXISTS idx_criteria_created ON acceptance_criteria(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_stories_persona ON user_stories(persona);
		CREATE INDEX IF NOT EXISTS idx_stories_created ON user_stories(created_at DESC);
	`
	_, err := s.sql.Exec(schema)
	return err
}
