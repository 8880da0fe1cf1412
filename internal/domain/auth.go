package domain

import (
	"context"
	"time"
)

// Session represents an active owner session.
type Session struct {
	Token     string
	Username  string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionRepository defines the port for session persistence operations.
// GetByToken returns (nil, nil) for unknown tokens.
type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
