package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/localharvest/localharvest/internal/auth"
)

// authHandlers holds auth-related HTTP handlers.
type authHandlers struct {
	config   auth.Config
	tokens   *auth.TokenStore
	sessions *auth.SessionStore
	users    *auth.UserStore
	mailer   *auth.Mailer
}

// handleLogin processes a JSON login request and sends a magic link.
// The response is the same whether or not the email is registered, so
// the endpoint can't be used to enumerate accounts.
func (h *authHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		apiError(w, "email is required", http.StatusBadRequest)
		return
	}

	successMsg := "If that email is registered, a login link has been sent. Check your inbox."

	if h.users.IsAuthorized(email) {
		token, err := h.tokens.Create(email)
		if err != nil {
			slog.Error("creating token", "err", err)
			apiJSON(w, map[string]string{"message": successMsg}, http.StatusOK)
			return
		}

		if _, err := h.mailer.SendMagicLink(email, token); err != nil {
			slog.Error("sending magic link", "err", err)
		}
	}

	apiJSON(w, map[string]string{"message": successMsg}, http.StatusOK)
}

// handleVerify validates a magic link token and creates a session.
func (h *authHandlers) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		apiError(w, "invalid login link", http.StatusBadRequest)
		return
	}

	email, err := h.tokens.Validate(token)
	if err != nil {
		apiError(w, "invalid or expired login link", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.Create(w, email); err != nil {
		slog.Error("creating session", "err", err)
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	apiJSON(w, map[string]string{"status": "ok", "email": email}, http.StatusOK)
}

// handleLogout destroys the session.
func (h *authHandlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.sessions.Destroy(w, r); err != nil {
		slog.Error("destroying session", "err", err)
	}

	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleMe returns the authenticated identity.
func (h *authHandlers) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := auth.Identity(r)
	if email == "" {
		apiError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	apiJSON(w, map[string]interface{}{
		"email":       email,
		"admin":       h.users.IsAdmin(email),
		"postal_code": h.users.PostalCode(email),
	}, http.StatusOK)
}
