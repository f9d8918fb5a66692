package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"yideshare/internal/domain"
	"yideshare/internal/observability"
	"yideshare/internal/service"
)

// AuthHandler exposes the mobile CAS bridge endpoints. All responses use a
// flat JSON envelope; pollers branch on success plus the message text, so the
// "not completed yet" wording is part of the wire contract.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// AuthResponse is the envelope for every mobile auth endpoint.
type AuthResponse struct {
	Success  bool         `json:"success"`
	Error    string       `json:"error,omitempty"`
	Message  string       `json:"message,omitempty"`
	LoginURL string       `json:"loginUrl,omitempty"`
	State    string       `json:"state,omitempty"`
	Token    string       `json:"token,omitempty"`
	User     *domain.User `json:"user,omitempty"`
}

func writeAuthJSON(w http.ResponseWriter, status int, resp AuthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Login handles GET /api/auth/mobile/login: mints a login attempt and hands
// the device the CAS URL to open in the system browser.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.authService.InitiateLogin(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Error("failed to initiate mobile login",
			"error", err.Error())
		writeAuthJSON(w, http.StatusInternalServerError, AuthResponse{
			Success: false,
			Error:   "login_failed",
			Message: "Failed to generate login URL",
		})
		return
	}

	observability.AuthLoginsInitiated.Inc()
	writeAuthJSON(w, http.StatusOK, AuthResponse{
		Success:  true,
		LoginURL: challenge.LoginURL,
		State:    challenge.State,
	})
}

// Callback handles GET /api/auth/mobile/callback, the target of the CAS
// browser redirect. It answers the browser, not the device; the device learns
// the outcome through polling.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	state := r.URL.Query().Get("state")

	if ticket == "" {
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "no_ticket",
			Message: "No CAS ticket provided",
		})
		return
	}
	if state == "" {
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "no_state",
			Message: "No state parameter provided",
		})
		return
	}

	_, err := h.authService.HandleCallback(r.Context(), ticket, state)
	switch {
	case err == nil:
		observability.CASCallbacks.WithLabelValues("success").Inc()
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: true,
			Message: "Authentication complete. You can return to the app.",
		})

	case errors.Is(err, domain.ErrStateNotFound), errors.Is(err, domain.ErrStateTerminal),
		errors.Is(err, domain.ErrStateExpired):
		observability.CASCallbacks.WithLabelValues("invalid_state").Inc()
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "invalid_state",
			Message: "Authentication state not found, expired, or already used",
		})

	default:
		observability.CASCallbacks.WithLabelValues("invalid_ticket").Inc()
		observability.FromContext(r.Context()).Warn("cas callback validation failed",
			"error", err.Error())
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "invalid_ticket",
			Message: "CAS validation failed",
		})
	}
}

// Poll handles GET /api/auth/mobile/poll. The first successful poll claims
// the session; any later poll for the same state reports invalid_state.
func (h *AuthHandler) Poll(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "no_state",
			Message: "No state parameter provided",
		})
		return
	}

	result, err := h.authService.Poll(r.Context(), state)
	switch {
	case err == nil:
		observability.AuthPolls.WithLabelValues("completed").Inc()
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: true,
			Token:   result.Token,
			User:    result.User,
			Message: "Authentication completed successfully",
		})

	case errors.Is(err, domain.ErrAuthPending):
		observability.AuthPolls.WithLabelValues("pending").Inc()
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Message: "Authentication not completed yet",
		})

	case errors.Is(err, domain.ErrStateExpired):
		observability.AuthPolls.WithLabelValues("timeout").Inc()
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "timeout",
			Message: "Authentication request expired",
		})

	case errors.Is(err, domain.ErrAuthFailed):
		observability.AuthPolls.WithLabelValues("failed").Inc()
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "auth_failed",
			Message: "Authentication failed",
		})

	default:
		observability.AuthPolls.WithLabelValues("invalid_state").Inc()
		writeAuthJSON(w, http.StatusOK, AuthResponse{
			Success: false,
			Error:   "invalid_state",
			Message: "Authentication state not found or expired",
		})
	}
}

// ValidateToken handles POST /api/auth/mobile/validate with body {token}.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeAuthJSON(w, http.StatusOK, AuthResponse{Success: false, Error: "no_token"})
		return
	}

	session, err := h.authService.ValidateToken(r.Context(), req.Token)
	if err != nil {
		writeAuthJSON(w, http.StatusOK, AuthResponse{Success: false, Error: "invalid_token"})
		return
	}

	writeAuthJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		User:    session.User,
	})
}

// Logout handles POST /api/auth/mobile/logout with body {token}. Logging out
// an unknown token still reports success.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeAuthJSON(w, http.StatusOK, AuthResponse{Success: true})
		return
	}

	if err := h.authService.Logout(r.Context(), req.Token); err != nil {
		observability.FromContext(r.Context()).Error("logout failed", "error", err.Error())
		writeAuthJSON(w, http.StatusOK, AuthResponse{Success: false, Error: "logout_failed"})
		return
	}

	writeAuthJSON(w, http.StatusOK, AuthResponse{Success: true})
}
