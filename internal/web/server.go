// Package web provides the HTTP server and JSON API for localharvest.
package web

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/localharvest/localharvest/internal/auth"
	"github.com/localharvest/localharvest/internal/listing"
	"github.com/localharvest/localharvest/internal/logging"
)

// Server is the localharvest HTTP server. Listings live in the given
// store; auth state always lives in SQLite.
type Server struct {
	store    listing.Store
	users    *auth.UserStore
	sessions *auth.SessionStore
	tokens   *auth.TokenStore
	apiKeys  *auth.APIKeyStore
	config   auth.Config
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a server with the given database and listing store.
func NewServer(db *sql.DB, store listing.Store, cfg auth.Config) (*Server, error) {
	tokens := auth.NewTokenStore(db)
	sessions := auth.NewSessionStore(db)
	apiKeys := auth.NewAPIKeyStore(db)
	passkeys := auth.NewPasskeyStore(db)
	users := auth.NewUserStore(db, cfg.AdminEmail)
	mailer := auth.NewMailer(cfg)

	s := &Server{
		store:    store,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		apiKeys:  apiKeys,
		config:   cfg,
		mux:      http.NewServeMux(),
	}

	authH := &authHandlers{
		config:   cfg,
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		mailer:   mailer,
	}

	cliAuthH := &cliAuthHandlers{
		config:   cfg,
		tokens:   tokens,
		sessions: sessions,
		apiKeys:  apiKeys,
		users:    users,
		mailer:   mailer,
	}

	apikeyH := &apikeyHandlers{
		apiKeys:  apiKeys,
		sessions: sessions,
	}

	passkeyH, err := newPasskeyHandlers(cfg, passkeys, sessions, users)
	if err != nil {
		return nil, fmt.Errorf("initializing passkeys: %w", err)
	}

	s.mux.HandleFunc("/health", s.handleHealth)

	s.mux.HandleFunc("/auth/login", authH.handleLogin)
	s.mux.HandleFunc("/auth/verify", authH.handleVerify)
	s.mux.HandleFunc("/auth/logout", authH.handleLogout)

	s.mux.HandleFunc("/cli/auth", cliAuthH.handleCLIAuth)
	s.mux.HandleFunc("/cli/auth/verify", cliAuthH.handleCLIAuthVerify)
	s.mux.HandleFunc("/cli/auth/complete", cliAuthH.handleCLIAuthComplete)

	s.mux.HandleFunc("/passkey/register/begin", passkeyH.handleBeginRegistration)
	s.mux.HandleFunc("/passkey/register/finish", passkeyH.handleFinishRegistration)
	s.mux.HandleFunc("/passkey/login/begin", passkeyH.handleBeginLogin)
	s.mux.HandleFunc("/passkey/login/finish", passkeyH.handleFinishLogin)

	userH := &userHandlers{users: users}

	s.mux.HandleFunc("/api/me", authH.handleMe)
	s.mux.HandleFunc("/api/me/postal_code", userH.handleSetPostalCode)
	s.mux.HandleFunc("/api/users", userH.handleUsersRoute)
	s.mux.HandleFunc("/api/users/", userH.handleUsersRoute)
	s.mux.HandleFunc("/api/keys", apikeyH.handleAPIKeysRoute)
	s.mux.HandleFunc("/api/keys/", apikeyH.handleAPIKeysRoute)
	s.mux.HandleFunc("/api/listings", s.handleAPIListings)
	s.mux.HandleFunc("/api/listings/", s.handleAPIListings)

	s.handler = logging.RequestLogger(
		auth.RequireAuth(sessions,
			auth.RequireAPIKey(apiKeys, sessions, s.mux)))

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("Starting localharvest on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
