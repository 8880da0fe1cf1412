// Package sqlite implements the key-value store on an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"moods/internal/domain"
)

var _ domain.KeyValueStore = (*DB)(nil)

// DB wraps a *sql.DB and implements domain.KeyValueStore.
type DB struct {
	sql *sql.DB
}

// Open opens the database file at path and runs migrations.
func Open(path string) (*DB, error) {
	s, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	s.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"CREATE TABLE IF NOT EXISTS kv_store (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at INTEGER NOT NULL);",
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// GetItem returns the value stored under key.
func (d *DB) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.sql.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?;", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem upserts value under key.
func (d *DB) SetItem(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO kv_store(key, value, updated_at) VALUES(?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;",
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (d *DB) RemoveItem(ctx context.Context, key string) error {
	if _, err := d.sql.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?;", key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
