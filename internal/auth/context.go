package auth

import (
	"context"
	"net/http"
)

type contextKey string

const identityKey contextKey = "auth.identity"

// WithIdentity returns a request whose context carries the
// authenticated email. Set by the auth middleware.
func WithIdentity(r *http.Request, email string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, email))
}

// Identity returns the authenticated email for the request, or "" when
// the request is unauthenticated.
func Identity(r *http.Request) string {
	if v, ok := r.Context().Value(identityKey).(string); ok {
		return v
	}
	return ""
}
