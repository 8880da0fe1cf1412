// Package memory implements in-memory storage for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"moods/internal/domain"
)

// DB implements an in-memory key-value store and session storage.
type DB struct {
	mu       sync.Mutex
	items    map[string]string
	sessions map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		items:    make(map[string]string),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.KeyValueStore = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- KeyValueStore ---

// GetItem returns the value stored under key.
func (db *DB) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	v, ok := db.items[key]
	return v, ok, nil
}

// SetItem stores value under key.
func (db *DB) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	db.items[key] = value
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (db *DB) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.items, key)
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.db.sessions[s.Token] = &s
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
