// Package casclient is the device side of the mobile login bridge: it
// requests a login URL, opens the system browser, and polls until the
// attempt resolves or times out.
package casclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"yideshare/internal/domain"
)

var (
	ErrLoginTimeout = errors.New("login attempt timed out")
	ErrLoginFailed  = errors.New("login attempt failed")
	ErrNoSession    = errors.New("no active session")
)

// Session is the credential a completed login hands the device.
type Session struct {
	Token string
	User  *domain.User
}

// Client talks to the bridge server's mobile auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	interval   time.Duration
	timeout    time.Duration
	openURL    func(url string) error

	mu      sync.Mutex
	cancel  context.CancelFunc
	session *Session
}

// Option customizes the client.
type Option func(*Client)

// WithPollInterval sets the delay between poll requests
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// WithTimeout sets how long a login attempt may stay unresolved
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithBrowserOpener sets the function used to open the login URL
func WithBrowserOpener(open func(url string) error) Option {
	return func(c *Client) { c.openURL = open }
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a bridge client for the given server base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		interval: 2 * time.Second,
		timeout:  5 * time.Minute,
		openURL:  func(string) error { return nil },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors the server's flat auth response.
type envelope struct {
	Success  bool         `json:"success"`
	Error    string       `json:"error"`
	Message  string       `json:"message"`
	LoginURL string       `json:"loginUrl"`
	State    string       `json:"state"`
	Token    string       `json:"token"`
	User     *domain.User `json:"user"`
}

// Login runs a full login attempt: fetch the login URL, open the browser,
// poll until resolved. Starting a new attempt cancels any attempt still
// polling. If the current session still validates, no new attempt starts.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	session := c.session
	c.mu.Unlock()

	if session != nil {
		if ok, _ := c.Validate(ctx); ok {
			return session, nil
		}
	}

	var start envelope
	if err := c.get(ctx, "/api/auth/mobile/login", &start); err != nil {
		return nil, err
	}
	if !start.Success || start.State == "" {
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, start.Message)
	}

	if err := c.openURL(start.LoginURL); err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	pollCtx, cancel := context.WithTimeout(ctx, c.timeout)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	return c.poll(pollCtx, start.State)
}

func (c *Client) poll(ctx context.Context, state string) (*Session, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLoginTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
			var resp envelope
			if err := c.get(ctx, "/api/auth/mobile/poll?state="+state, &resp); err != nil {
				// Transient network errors do not abort the attempt.
				continue
			}

			switch {
			case resp.Success:
				session := &Session{Token: resp.Token, User: resp.User}
				c.mu.Lock()
				c.session = session
				c.mu.Unlock()
				return session, nil

			case resp.Error == "timeout":
				return nil, ErrLoginTimeout

			case resp.Error == "" && strings.Contains(resp.Message, "not completed yet"):
				// The server's explicit still-pending answer; keep polling.
				// Anything else falls through as a failure so a malformed or
				// empty response cannot spin until the deadline.

			default:
				return nil, fmt.Errorf("%w: %s", ErrLoginFailed, resp.Message)
			}
		}
	}
}

// Validate checks the current session token against the server.
func (c *Client) Validate(ctx context.Context) (bool, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return false, ErrNoSession
	}

	var resp envelope
	if err := c.post(ctx, "/api/auth/mobile/validate", map[string]string{"token": session.Token}, &resp); err != nil {
		return false, err
	}
	if !resp.Success {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
	}
	return resp.Success, nil
}

// Logout invalidates the current session on the server and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}

	var resp envelope
	return c.post(ctx, "/api/auth/mobile/logout", map[string]string{"token": session.Token}, &resp)
}

// CurrentSession returns the session claimed by the last successful login,
// or nil.
func (c *Client) CurrentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) get(ctx context.Context, path string, out *envelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out *envelope) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out *envelope) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
