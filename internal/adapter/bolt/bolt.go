// Package bolt implements the key-value store on an embedded BoltDB file.
package bolt

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"moods/internal/domain"
)

var _ domain.KeyValueStore = (*Store)(nil)

var itemsBucket = []byte("kv")

// Store implements domain.KeyValueStore using BoltDB.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures the bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(itemsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s bucket: %w", itemsBucket, err)
	}

	return &Store{db: db}, nil
}

// GetItem returns the value stored under key.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(itemsBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		// data is only valid inside the transaction; string() copies it.
		value, found = string(data), true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, found, nil
}

// SetItem stores value under key.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(itemsBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(itemsBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Close closes the BoltDB database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
