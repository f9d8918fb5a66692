package memory

import (
	"context"
	"sync"
	"time"

	"yideshare/internal/domain"
	"yideshare/internal/security"
)

// SessionStore is an in-memory domain.SessionStore. Tokens are
// cryptographically random opaque identifiers; nothing about the user can be
// recovered from a token without the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

func (s *SessionStore) Create(ctx context.Context, user *domain.User) (*domain.Session, error) {
	token, err := security.NewToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		Token:          token,
		User:           user,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session

	snapshot := *session
	return &snapshot, nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	snapshot := *session
	return &snapshot, nil
}

func (s *SessionStore) Touch(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	session.LastAccessedAt = s.now()
	snapshot := *session
	return &snapshot, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var count int64
	for token, session := range s.sessions {
		if now.Sub(session.LastAccessedAt) > domain.SessionIdleTTL {
			delete(s.sessions, token)
			count++
		}
	}
	return count, nil
}

// Len reports the number of live sessions, for metrics.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
