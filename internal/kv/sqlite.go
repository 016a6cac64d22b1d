// ABOUTME: SQLite implementation of the Substrate interface
// ABOUTME: Stores every key in one table with automatic schema creation

package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by OpenSQLite.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCGO     = "sqlite3" // github.com/mattn/go-sqlite3
)

const (
	getQuery    = `SELECT value FROM kv WHERE key = ?`
	setQuery    = `INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`
	removeQuery = `DELETE FROM kv WHERE key = ?`
)

// Ensure SQLite implements Substrate.
var _ Substrate = (*SQLite)(nil)

// SQLite implements Substrate on a single SQLite table.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the database at path using the named driver.
// An empty driver selects DriverModernc. Parent directories are created if needed.
func OpenSQLite(path, driver string) (*SQLite, error) {
	if driver == "" {
		driver = DriverModernc
	}
	if driver != DriverModernc && driver != DriverCGO {
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := NewSQLite(db)
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.logger.Info("SQLite substrate initialized", "path", path, "driver", driver)
	return s, nil
}

// NewSQLite wraps an already open database. The kv table must exist.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{
		db:     db,
		logger: slog.Default().With("component", "kv"),
	}
}

func (s *SQLite) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	return err
}

// Get returns the value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w: %w", key, ErrUnavailable, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, setQuery, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing %q: %w: %w", key, ErrUnavailable, err)
	}

	s.logger.Debug("stored key", "key", key, "size", len(value))
	return nil
}

// Remove deletes key.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, removeQuery, key); err != nil {
		return fmt.Errorf("removing %q: %w: %w", key, ErrUnavailable, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	s.logger.Info("closing SQLite substrate")
	return s.db.Close()
}
