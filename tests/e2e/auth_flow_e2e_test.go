//go:build e2e
// +build e2e

// Package e2e verifies the complete mobile login flow against a real HTTP
// server: login initiation, the browser redirect through a simulated CAS
// server, device polling, and session lifecycle.
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"yideshare/internal/cas"
	"yideshare/internal/casclient"
	"yideshare/internal/directory"
	"yideshare/internal/handler"
	"yideshare/internal/middleware"
	"yideshare/internal/service"
	"yideshare/internal/store/memory"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const casSuccessXML = `<cas:serviceResponse xmlns:cas="http://www.yale.edu/tp/cas">
  <cas:authenticationSuccess>
    <cas:user>ab123</cas:user>
  </cas:authenticationSuccess>
</cas:serviceResponse>`

// fakeCAS mimics the CAS server's login redirect and serviceValidate
// endpoints. Tickets are single use, like the real thing.
type fakeCAS struct {
	issued map[string]string // ticket -> service URL it was issued for
}

func newFakeCAS() *fakeCAS {
	return &fakeCAS{issued: make(map[string]string)}
}

func (f *fakeCAS) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/cas/login", func(w http.ResponseWriter, r *http.Request) {
		service := r.URL.Query().Get("service")
		ticket := fmt.Sprintf("ST-%d", len(f.issued)+1)
		f.issued[ticket] = service

		sep := "?"
		if u, err := url.Parse(service); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		http.Redirect(w, r, service+sep+"ticket="+ticket, http.StatusFound)
	})

	mux.HandleFunc("/cas/serviceValidate", func(w http.ResponseWriter, r *http.Request) {
		ticket := r.URL.Query().Get("ticket")
		service := r.URL.Query().Get("service")

		registered, ok := f.issued[ticket]
		if !ok || registered != service {
			fmt.Fprint(w, `<cas:serviceResponse xmlns:cas="http://www.yale.edu/tp/cas">
  <cas:authenticationFailure code="INVALID_TICKET">Ticket not recognized</cas:authenticationFailure>
</cas:serviceResponse>`)
			return
		}
		delete(f.issued, ticket)
		fmt.Fprint(w, casSuccessXML)
	})

	return mux
}

// bridgeEnv is an in-process bridge server wired to a fake CAS.
type bridgeEnv struct {
	server   *httptest.Server
	casSrv   *httptest.Server
	sessions *memory.SessionStore
}

func newBridgeEnv(t *testing.T) *bridgeEnv {
	t.Helper()

	casSrv := httptest.NewServer(newFakeCAS().handler())
	t.Cleanup(casSrv.Close)

	pending := memory.NewPendingAuthStore()
	sessions := memory.NewSessionStore()

	// The server's own address becomes the public base URL, so the service
	// URL CAS sees matches the one validation replays.
	r := chi.NewRouter()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	authService := service.NewAuthService(
		pending,
		sessions,
		cas.NewClient(casSrv.URL),
		directory.NewYaliesClient("http://unused.invalid", ""),
		server.URL,
	)
	authHandler := handler.NewAuthHandler(authService)

	r.Get("/api/auth/mobile/login", authHandler.Login)
	r.Get("/api/auth/mobile/callback", authHandler.Callback)
	r.Get("/api/auth/mobile/poll", authHandler.Poll)
	r.Post("/api/auth/mobile/validate", authHandler.ValidateToken)
	r.Post("/api/auth/mobile/logout", authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sessions))
		r.Get("/api/whoami", func(w http.ResponseWriter, req *http.Request) {
			netid, _ := middleware.GetNetID(req.Context())
			fmt.Fprint(w, netid)
		})
	})

	return &bridgeEnv{server: server, casSrv: casSrv, sessions: sessions}
}

// browse follows the CAS redirect chain the way a real browser would.
func browse(t *testing.T, loginURL string) {
	t.Helper()
	resp, err := http.Get(loginURL)
	require.NoError(t, err, "browser redirect chain failed")
	resp.Body.Close()
}

func TestMobileLoginFlow(t *testing.T) {
	env := newBridgeEnv(t)

	client := casclient.NewClient(env.server.URL,
		casclient.WithPollInterval(20*time.Millisecond),
		casclient.WithTimeout(5*time.Second),
		casclient.WithBrowserOpener(func(url string) error {
			browse(t, url)
			return nil
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := client.Login(ctx)
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, "ab123", session.User.NetID)
	assert.Len(t, session.Token, 64)

	// The token works as a bearer credential on protected routes.
	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ok, err := client.Validate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, client.Logout(ctx))
	assert.Nil(t, client.CurrentSession())
}

func TestMobileLoginFlow_StateClaimedOnce(t *testing.T) {
	env := newBridgeEnv(t)

	// Drive the flow by hand to watch the state.
	resp, err := http.Get(env.server.URL + "/api/auth/mobile/login")
	require.NoError(t, err)
	var start struct {
		LoginURL string `json:"loginUrl"`
		State    string `json:"state"`
	}
	require.NoError(t, jsonDecode(resp, &start))

	browse(t, start.LoginURL)

	poll := func() map[string]interface{} {
		resp, err := http.Get(env.server.URL + "/api/auth/mobile/poll?state=" + start.State)
		require.NoError(t, err)
		var out map[string]interface{}
		require.NoError(t, jsonDecode(resp, &out))
		return out
	}

	first := poll()
	require.Equal(t, true, first["success"], "first poll should claim the session: %v", first)

	second := poll()
	assert.Equal(t, false, second["success"])
	assert.Equal(t, "invalid_state", second["error"])
}

func TestMobileLoginFlow_ReplayedTicketRejected(t *testing.T) {
	env := newBridgeEnv(t)

	resp, err := http.Get(env.server.URL + "/api/auth/mobile/login")
	require.NoError(t, err)
	var start struct {
		LoginURL string `json:"loginUrl"`
		State    string `json:"state"`
	}
	require.NoError(t, jsonDecode(resp, &start))

	// The browser round trip consumes the ticket and resolves the attempt.
	browse(t, start.LoginURL)

	// Replaying the callback with any ticket must not restart the attempt.
	resp, err = http.Get(env.server.URL + "/api/auth/mobile/callback?ticket=ST-1&state=" + start.State)
	require.NoError(t, err)
	var replay map[string]interface{}
	require.NoError(t, jsonDecode(resp, &replay))
	assert.Equal(t, false, replay["success"])
	assert.Equal(t, "invalid_state", replay["error"])
}
