// Package file implements the key-value store as one JSON file per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"moods/internal/domain"
)

var _ domain.KeyValueStore = (*Store)(nil)

// Store keeps each key in <dir>/<escaped key>.json.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the data directory if needed and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// GetItem reads the file for key. A missing file is reported as not found.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return string(data), true, nil
}

// SetItem atomically replaces the file for key.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	// Each writer gets its own temp file so processes sharing dir cannot
	// clobber each other's partial writes.
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage error creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// RemoveItem deletes the file for key. A missing file is not an error.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage error removing %s: %w", path, err)
	}
	return nil
}
