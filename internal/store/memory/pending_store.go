// Package memory provides in-memory reference implementations of the domain
// store interfaces. They are safe for concurrent use by request handlers and
// back the server by default; swapping in an external store only requires
// satisfying the same interfaces.
package memory

import (
	"context"
	"sync"
	"time"

	"yideshare/internal/domain"
)

// PendingAuthStore is an in-memory domain.PendingAuthStore.
type PendingAuthStore struct {
	mu      sync.Mutex
	entries map[string]*domain.PendingAuth
	now     func() time.Time
}

// NewPendingAuthStore creates an empty pending-authentication store.
func NewPendingAuthStore() *PendingAuthStore {
	return &PendingAuthStore{
		entries: make(map[string]*domain.PendingAuth),
		now:     time.Now,
	}
}

func (s *PendingAuthStore) Create(ctx context.Context, state, serviceURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[state]; ok {
		return domain.ErrStateExists
	}

	s.entries[state] = &domain.PendingAuth{
		State:      state,
		Status:     domain.AuthStatusPending,
		ServiceURL: serviceURL,
		CreatedAt:  s.now(),
	}
	return nil
}

// Get returns a snapshot of the attempt without consuming it. Used by the
// callback handler to recover the exact service URL registered at initiation.
func (s *PendingAuthStore) Get(ctx context.Context, state string) (*domain.PendingAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	snapshot := *entry
	return &snapshot, nil
}

func (s *PendingAuthStore) MarkCompleted(ctx context.Context, state, token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return domain.ErrStateNotFound
	}
	if entry.Status != domain.AuthStatusPending {
		return domain.ErrStateTerminal
	}
	if entry.Expired(s.now()) {
		// The attempt died while the browser round trip was in flight; it
		// must not become claimable.
		delete(s.entries, state)
		return domain.ErrStateExpired
	}

	entry.Status = domain.AuthStatusCompleted
	entry.Token = token
	entry.User = user
	entry.CompletedAt = s.now()
	return nil
}

func (s *PendingAuthStore) MarkFailed(ctx context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return domain.ErrStateNotFound
	}
	if entry.Status != domain.AuthStatusPending {
		return domain.ErrStateTerminal
	}

	entry.Status = domain.AuthStatusFailed
	entry.CompletedAt = s.now()
	return nil
}

// TakeIfCompleted is the single atomic check-and-delete for pollers. The
// mutex is held across the read and the delete so that exactly one of any
// number of concurrent pollers claims a completed attempt; the rest observe
// ErrStateNotFound.
func (s *PendingAuthStore) TakeIfCompleted(ctx context.Context, state string) (*domain.PendingAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return nil, domain.ErrStateNotFound
	}

	switch entry.Status {
	case domain.AuthStatusCompleted:
		delete(s.entries, state)
		if entry.Expired(s.now()) {
			return nil, domain.ErrStateExpired
		}
		return entry, nil

	case domain.AuthStatusFailed:
		delete(s.entries, state)
		return nil, domain.ErrAuthFailed

	default:
		if entry.Expired(s.now()) {
			delete(s.entries, state)
			return nil, domain.ErrStateExpired
		}
		return nil, domain.ErrAuthPending
	}
}

func (s *PendingAuthStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var count int64
	for state, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, state)
			count++
		}
	}
	return count, nil
}

// Len reports the number of tracked attempts, for metrics.
func (s *PendingAuthStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
