package web

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/localharvest/localharvest/internal/auth"
)

// cliAuthHandlers handles the /cli/auth flow: the CLI opens a browser,
// the user logs in via magic link, and the final page shows an API key
// to paste back into the terminal.
type cliAuthHandlers struct {
	config   auth.Config
	tokens   *auth.TokenStore
	sessions *auth.SessionStore
	apiKeys  *auth.APIKeyStore
	users    *auth.UserStore
	mailer   *auth.Mailer
}

type cliAuthData struct {
	APIKey  string
	Message string
	Error   string
}

// handleCLIAuth serves the CLI login page (GET) and processes email submission (POST).
func (h *cliAuthHandlers) handleCLIAuth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		renderCLIAuth(w, cliAuthData{})
	case http.MethodPost:
		h.submitEmail(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *cliAuthHandlers) submitEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	successMsg := "If that email is registered, a login link has been sent. Check your inbox."

	if email == "" {
		renderCLIAuth(w, cliAuthData{Error: "Email is required"})
		return
	}

	// Only send a real token if the email is authorized. The response
	// is identical either way to prevent email enumeration.
	if h.users.IsAuthorized(email) {
		token, err := h.tokens.Create(email)
		if err != nil {
			slog.Error("creating token", "err", err)
			renderCLIAuth(w, cliAuthData{Message: successMsg})
			return
		}

		// Magic link redirects back to /cli/auth/complete after verification
		if _, err := h.mailer.SendCLIMagicLink(email, token); err != nil {
			slog.Error("sending magic link", "err", err)
		}
	}

	renderCLIAuth(w, cliAuthData{Message: successMsg})
}

// handleCLIAuthVerify validates the magic link token, creates a session,
// then redirects to /cli/auth/complete.
func (h *cliAuthHandlers) handleCLIAuthVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		renderCLIAuth(w, cliAuthData{Error: "Invalid login link"})
		return
	}

	email, err := h.tokens.Validate(token)
	if err != nil {
		renderCLIAuth(w, cliAuthData{Error: "Invalid or expired login link. Please try again."})
		return
	}

	if err := h.sessions.Create(w, email); err != nil {
		slog.Error("creating session", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/cli/auth/complete", http.StatusSeeOther)
}

// handleCLIAuthComplete generates an API key and displays it.
// Requires a valid session (user just logged in).
func (h *cliAuthHandlers) handleCLIAuthComplete(w http.ResponseWriter, r *http.Request) {
	email, err := h.sessions.Validate(r)
	if err != nil {
		http.Redirect(w, r, "/cli/auth", http.StatusSeeOther)
		return
	}

	rawKey, _, err := h.apiKeys.Create("CLI", email)
	if err != nil {
		slog.Error("creating api key", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	renderCLIAuth(w, cliAuthData{APIKey: rawKey})
}

func renderCLIAuth(w http.ResponseWriter, data cliAuthData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	fmt.Fprint(w, "<!DOCTYPE html><html><head><title>LocalHarvest CLI Login</title></head><body>")
	fmt.Fprint(w, "<h1>LocalHarvest CLI Login</h1>")

	switch {
	case data.APIKey != "":
		fmt.Fprintf(w, "<p>Copy this API key into your terminal:</p><pre>%s</pre>", html.EscapeString(data.APIKey))
		fmt.Fprint(w, "<p>This key is shown only once.</p>")
	case data.Error != "":
		fmt.Fprintf(w, "<p>%s</p>", html.EscapeString(data.Error))
		fmt.Fprint(w, loginForm)
	case data.Message != "":
		fmt.Fprintf(w, "<p>%s</p>", html.EscapeString(data.Message))
	default:
		fmt.Fprint(w, loginForm)
	}

	fmt.Fprint(w, "</body></html>")
}

const loginForm = `<form method="POST" action="/cli/auth">
<label>Email <input type="email" name="email" autofocus></label>
<button type="submit">Send login link</button>
</form>`
