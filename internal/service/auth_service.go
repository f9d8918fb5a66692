package service

import (
	"context"
	"fmt"
	"time"

	"yideshare/internal/cas"
	"yideshare/internal/directory"
	"yideshare/internal/domain"
	"yideshare/internal/observability"
	"yideshare/internal/security"
)

// CASGateway is the slice of the CAS client the auth service needs: building
// the browser login URL and redeeming tickets.
type CASGateway interface {
	LoginURL(serviceURL string) string
	Validate(ctx context.Context, ticket, serviceURL string) (*cas.Identity, error)
}

// LoginChallenge is handed to the device to start the browser flow.
type LoginChallenge struct {
	LoginURL string
	State    string
}

// PollResult is the payload a successful poll claims exactly once.
type PollResult struct {
	Token string
	User  *domain.User
}

// AuthService orchestrates the mobile CAS bridge: login initiation, the CAS
// callback, and device polling. Each login attempt moves
// pending -> completed|failed in the pending store and is consumed by the
// first successful poll.
type AuthService struct {
	pending       domain.PendingAuthStore
	sessions      domain.SessionStore
	gateway       CASGateway
	directory     directory.Lookup
	publicBaseURL string
}

// NewAuthService wires the auth service. publicBaseURL is the externally
// reachable base of this server (scheme + host), used to build the callback
// URL registered with CAS.
func NewAuthService(
	pending domain.PendingAuthStore,
	sessions domain.SessionStore,
	gateway CASGateway,
	dir directory.Lookup,
	publicBaseURL string,
) *AuthService {
	return &AuthService{
		pending:       pending,
		sessions:      sessions,
		gateway:       gateway,
		directory:     dir,
		publicBaseURL: publicBaseURL,
	}
}

// callbackURL builds the service URL for a login attempt. The same string is
// stored at initiation and replayed during ticket validation; CAS rejects the
// ticket if they differ by a single byte.
func (s *AuthService) callbackURL(state string) string {
	return fmt.Sprintf("%s/api/auth/mobile/callback?state=%s", s.publicBaseURL, state)
}

// InitiateLogin mints a fresh state, registers the pending attempt, and
// returns the CAS login URL the device should open in the system browser.
// No request is made to CAS here; the browser performs the redirect.
func (s *AuthService) InitiateLogin(ctx context.Context) (*LoginChallenge, error) {
	state, err := security.NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	serviceURL := s.callbackURL(state)
	if err := s.pending.Create(ctx, state, serviceURL); err != nil {
		return nil, fmt.Errorf("failed to register login attempt: %w", err)
	}

	return &LoginChallenge{
		LoginURL: s.gateway.LoginURL(serviceURL),
		State:    state,
	}, nil
}

// HandleCallback finalizes a login attempt after CAS redirects the browser
// back. Every path out of a still-pending attempt reaches MarkCompleted or
// MarkFailed; a poller is never left watching a stuck entry.
func (s *AuthService) HandleCallback(ctx context.Context, ticket, state string) (*domain.Session, error) {
	log := observability.FromContext(ctx)

	entry, err := s.pending.Get(ctx, state)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.AuthStatusPending {
		// CAS tickets are single-use; a replayed callback lands here once the
		// first one resolved the attempt.
		return nil, domain.ErrStateTerminal
	}
	if entry.Expired(time.Now()) {
		// The attempt outlived its window before the sweep caught it. It must
		// not mint a session, so the ticket is never redeemed.
		return nil, domain.ErrStateExpired
	}

	identity, err := s.gateway.Validate(ctx, ticket, entry.ServiceURL)
	if err != nil {
		s.fail(ctx, state)
		return nil, err
	}

	user := &domain.User{NetID: identity.NetID}

	// Directory enrichment is best effort; authentication succeeds on netid
	// alone when the lookup is unavailable.
	profile, err := s.directory.PersonByNetID(ctx, identity.NetID)
	if err != nil {
		log.Warn("directory enrichment unavailable",
			"netid", identity.NetID,
			"error", err.Error())
	} else {
		user.Profile = profile
	}

	// Create the session first, then mark completed referencing its token, so
	// a poller that observes completed can always dereference the session.
	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		s.fail(ctx, state)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.pending.MarkCompleted(ctx, state, session.Token, user); err != nil {
		// Lost the race against expiry sweep or a competing resolution; the
		// session must not outlive an unclaimable attempt.
		if delErr := s.sessions.Delete(ctx, session.Token); delErr != nil {
			log.Error("failed to roll back orphaned session", "error", delErr.Error())
		}
		return nil, err
	}

	log.Info("mobile login completed", "netid", user.NetID)
	return session, nil
}

func (s *AuthService) fail(ctx context.Context, state string) {
	if err := s.pending.MarkFailed(ctx, state); err != nil {
		observability.FromContext(ctx).Error("failed to mark login attempt failed",
			"error", err.Error())
	}
}

// Poll claims a resolved login attempt. Error mapping, for the handler:
// ErrAuthPending (keep polling), ErrStateExpired (timeout), ErrStateNotFound
// (invalid state), ErrAuthFailed (terminal failure).
func (s *AuthService) Poll(ctx context.Context, state string) (*PollResult, error) {
	entry, err := s.pending.TakeIfCompleted(ctx, state)
	if err != nil {
		return nil, err
	}
	return &PollResult{Token: entry.Token, User: entry.User}, nil
}

// ValidateToken refreshes and returns the session for a token.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.Touch(ctx, token)
}

// Logout deletes the session for a token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
