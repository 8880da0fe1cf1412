package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetItem returns the value stored under key.
func (d *DB) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.sql.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = $1;", key).Scan(&value)
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
		"INSERT INTO kv_store(key, value, updated_at) VALUES($1, $2, $3) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;",
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (d *DB) RemoveItem(ctx context.Context, key string) error {
	if _, err := d.sql.ExecContext(ctx, "DELETE FROM kv_store WHERE key = $1;", key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
