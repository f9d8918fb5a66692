package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"yideshare/internal/domain"
)

func TestSessionStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()

	session, err := s.Create(ctx, &domain.User{NetID: "ab123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(session.Token) != 64 {
		t.Errorf("token length = %d, want 64-char opaque token", len(session.Token))
	}

	got, err := s.Get(ctx, session.Token)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.User.NetID != "ab123" {
		t.Errorf("NetID = %s, want ab123", got.User.NetID)
	}
}

func TestSessionStore_UniqueTokens(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := s.Create(ctx, &domain.User{NetID: "ab123"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if seen[session.Token] {
			t.Fatal("Create() issued a duplicate token")
		}
		seen[session.Token] = true
	}
}

func TestSessionStore_Touch(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	session, err := s.Create(ctx, &domain.User{NetID: "ab123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	s.now = func() time.Time { return base.Add(time.Hour) }
	touched, err := s.Touch(ctx, session.Token)
	if err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if !touched.LastAccessedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("LastAccessedAt = %v, want %v", touched.LastAccessedAt, base.Add(time.Hour))
	}
	if !touched.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want unchanged %v", touched.CreatedAt, base)
	}
}

func TestSessionStore_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()

	session, err := s.Create(ctx, &domain.User{NetID: "ab123"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Delete(ctx, session.Token); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, session.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}

	// deleting an unknown token is not an error
	if err := s.Delete(ctx, "no-such-token"); err != nil {
		t.Errorf("Delete(unknown) error = %v, want nil", err)
	}
}

func TestSessionStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	stale, err := s.Create(ctx, &domain.User{NetID: "old1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	s.now = func() time.Time { return base.Add(domain.SessionIdleTTL + time.Minute) }
	fresh, err := s.Create(ctx, &domain.User{NetID: "new1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	count, err := s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if count != 1 {
		t.Errorf("DeleteExpired() count = %d, want 1", count)
	}
	if _, err := s.Get(ctx, stale.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("stale session survived sweep: %v", err)
	}
	if _, err := s.Get(ctx, fresh.Token); err != nil {
		t.Errorf("fresh session swept: %v", err)
	}
}
