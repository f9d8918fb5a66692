package domain

import (
	"context"
	"errors"
	"time"
)

// SessionIdleTTL is how long a session may go unused before it is eligible
// for cleanup. The original backend never expired sessions; the sweep closes
// that gap.
const SessionIdleTTL = 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

// Session represents an authenticated mobile session. Token is an opaque
// server-issued credential; it carries no user data itself.
type Session struct {
	Token          string    `json:"token"`
	User           *User     `json:"user"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// SessionStore defines the interface for session storage.
type SessionStore interface {
	// Create mints a new opaque token and stores a session for the user.
	Create(ctx context.Context, user *User) (*Session, error)

	// Get returns the session for a token without refreshing it.
	Get(ctx context.Context, token string) (*Session, error)

	// Touch updates LastAccessedAt and returns the refreshed session.
	Touch(ctx context.Context, token string) (*Session, error)

	// Delete removes a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions idle longer than SessionIdleTTL and
	// returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
