package middleware

import (
	"context"
	"net/http"
	"strings"

	"yideshare/internal/domain"
)

type contextKey string

const (
	NetIDKey   contextKey = "netid"
	SessionKey contextKey = "session"
)

// Auth authenticates requests by Bearer token against the session store.
// Successful lookups refresh the session and put the netid in the request
// context; everything downstream trusts only that identity.
func Auth(sessions domain.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, `{"success":false,"error":"not_authenticated"}`, http.StatusUnauthorized)
				return
			}

			session, err := sessions.Touch(r.Context(), token)
			if err != nil {
				http.Error(w, `{"success":false,"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), NetIDKey, session.User.NetID)
			ctx = context.WithValue(ctx, SessionKey, session)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func GetNetID(ctx context.Context) (string, bool) {
	netid, ok := ctx.Value(NetIDKey).(string)
	return netid, ok
}

func GetSession(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	return session, ok
}

func WithNetID(ctx context.Context, netid string) context.Context {
	return context.WithValue(ctx, NetIDKey, netid)
}

func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
