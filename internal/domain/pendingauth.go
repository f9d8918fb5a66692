package domain

import (
	"context"
	"errors"
	"time"
)

// PendingAuthTTL is how long a login attempt may remain unresolved before a
// poll reports it as timed out.
const PendingAuthTTL = 5 * time.Minute

var (
	ErrStateNotFound = errors.New("authentication state not found")
	ErrStateExpired  = errors.New("authentication state expired")
	ErrStateExists   = errors.New("authentication state already exists")
	ErrStateTerminal = errors.New("authentication state already resolved")
	ErrAuthPending   = errors.New("authentication not completed yet")
	ErrAuthFailed    = errors.New("authentication failed")
)

// AuthStatus is the lifecycle status of a login attempt.
type AuthStatus string

const (
	AuthStatusPending   AuthStatus = "pending"
	AuthStatusCompleted AuthStatus = "completed"
	AuthStatusFailed    AuthStatus = "failed"
)

// PendingAuth tracks one in-flight mobile login attempt, keyed by its opaque
// state token. ServiceURL is the exact callback URL registered with CAS for
// this attempt; ticket validation must reuse it byte for byte.
type PendingAuth struct {
	State       string
	Status      AuthStatus
	ServiceURL  string
	Token       string
	User        *User
	CreatedAt   time.Time
	CompletedAt time.Time
}

// Expired reports whether the attempt has outlived PendingAuthTTL.
func (p *PendingAuth) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > PendingAuthTTL
}

// PendingAuthStore tracks in-flight login attempts. Implementations must make
// TakeIfCompleted an atomic check-and-delete so that at most one concurrent
// poller ever claims a completed attempt.
type PendingAuthStore interface {
	// Create inserts a new pending attempt. Returns ErrStateExists if the
	// state is already in use.
	Create(ctx context.Context, state, serviceURL string) error

	// Get returns a snapshot of an attempt without consuming it. Returns
	// ErrStateNotFound for unknown states.
	Get(ctx context.Context, state string) (*PendingAuth, error)

	// MarkCompleted transitions pending -> completed, attaching the session
	// token and user. Returns ErrStateNotFound for unknown states and
	// ErrStateTerminal if the attempt is no longer pending.
	MarkCompleted(ctx context.Context, state, token string, user *User) error

	// MarkFailed transitions pending -> failed.
	MarkFailed(ctx context.Context, state string) error

	// TakeIfCompleted atomically reads and deletes a terminal attempt.
	// Outcomes:
	//   completed        -> (*PendingAuth, nil), entry removed
	//   failed           -> (nil, ErrAuthFailed), entry removed
	//   pending, live    -> (nil, ErrAuthPending), entry kept
	//   pending, expired -> (nil, ErrStateExpired), entry removed
	//   unknown          -> (nil, ErrStateNotFound)
	TakeIfCompleted(ctx context.Context, state string) (*PendingAuth, error)

	// DeleteExpired removes attempts older than PendingAuthTTL and returns
	// how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
