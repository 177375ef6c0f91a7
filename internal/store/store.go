// Package store persists editing sessions to SQLite.
//
// Projects are stored as JSON documents alongside a few indexed columns,
// plus an append-only journal of committed commands for crash diagnosis.
// The editing core itself performs no I/O; the session hands fully formed
// snapshots to the store and the store hands fully formed projects back.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a SQLite-backed project repository.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path. An empty path selects an
// in-memory database that lives until Close.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		path = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// modernc sqlite is happiest with one connection; the session is
	// single-writer anyway.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	s := &Store{conn: conn, logger: logger}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn exposes the underlying handle for tests.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

func (s *Store) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("store: read migrations: %w", err)
	}

	for _, m := range entries {
		if m.IsDir() {
			continue
		}
		name := m.Name()
		if s.isMigrationApplied(name) {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("store: read migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("store: apply migration %s: %w", name, err)
		}
		if _, err := s.conn.Exec("INSERT INTO _migrations (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("store: record migration %s: %w", name, err)
		}
		if s.logger != nil {
			s.logger.Info("applied migration", "name", name)
		}
	}
	return nil
}

func (s *Store) isMigrationApplied(name string) bool {
	var exists int
	err := s.conn.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name='_migrations'").Scan(&exists)
	if err != nil {
		return false
	}

	var applied int
	err = s.conn.QueryRow("SELECT 1 FROM _migrations WHERE name = ?", name).Scan(&applied)
	return err == nil && applied == 1
}
