package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moods/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
)

const sessionTTL = 24 * time.Hour

// Owner is the single account allowed through the access gate. An empty
// PasswordHash disables password login, leaving SSO and forward auth.
type Owner struct {
	Username     string
	PasswordHash string
}

// AuthService guards the service for its owner and manages sessions.
type AuthService struct {
	owner    Owner
	sessions domain.SessionRepository
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(owner Owner, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		owner:    owner,
		sessions: sessions,
		now:      time.Now,
	}
}

// Login checks the owner's password and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent, ip string) (string, error) {
	if s.owner.PasswordHash == "" || !s.isOwner(username) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.owner.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.createSession(ctx, username, userAgent, ip)
}

// LoginWithIdentity creates a session for an identity already verified by
// an SSO provider. Only the owner is accepted.
func (s *AuthService) LoginWithIdentity(ctx context.Context, identity, userAgent, ip string) (string, error) {
	if !s.isOwner(identity) {
		return "", ErrInvalidCredentials
	}
	return s.createSession(ctx, identity, userAgent, ip)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks that a session token is live and was issued to the
// same user agent. It returns the session's username.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (string, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return "", ErrSessionExpired
	}

	if session.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return "", ErrSessionExpired
	}

	return session.Username, nil
}

// ValidateForwardAuth accepts the Remote-User header set by a trusted
// forward-auth proxy when it names the owner.
func (s *AuthService) ValidateForwardAuth(remoteUser string) (string, error) {
	if remoteUser == "" {
		return "", errors.New("no remote user header")
	}
	if !s.isOwner(remoteUser) {
		return "", ErrInvalidCredentials
	}
	return remoteUser, nil
}

// PruneExpired removes expired sessions.
func (s *AuthService) PruneExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

// HashPassword returns the bcrypt hash to configure as the owner's password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) isOwner(username string) bool {
	return s.owner.Username != "" && ConstantTimeCompare(username, s.owner.Username)
}

func (s *AuthService) createSession(ctx context.Context, username, userAgent, ip string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	err = s.sessions.Create(ctx, domain.Session{
		Token:     token,
		Username:  username,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
