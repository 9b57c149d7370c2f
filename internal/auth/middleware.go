package auth

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// RequireAuth is middleware that rejects unauthenticated web requests.
// Public paths (auth endpoints, passkey login, health) pass through.
// API paths (/api/...) are handled separately by RequireAPIKey.
// On success the authenticated email is attached to the request context.
func RequireAuth(sessions *SessionStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// API paths skip session auth, they use RequireAPIKey instead
		if strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		email, err := sessions.Validate(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, WithIdentity(r, email))
	})
}

// rateLimiter tracks failed API key attempts per IP.
type rateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

var apiKeyLimiter = &rateLimiter{
	attempts: make(map[string][]time.Time),
}

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

// limited reports whether the IP has used up its failed attempts.
func (rl *rateLimiter) limited(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateLimitWindow)
	n := 0
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			n++
		}
	}
	return n >= rateLimitMaxFail
}

// recordFailure charges a failed key attempt against the IP.
func (rl *rateLimiter) recordFailure(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)

	// Prune old entries
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	rl.attempts[ip] = append(valid, now)
}

// RequireAPIKey is middleware that validates Bearer token auth for /api/ routes.
// Non-API routes pass through untouched. A valid session cookie also works,
// so the browser UI can call the API directly. Key management paths
// (/api/keys) accept session auth only. On success the owning email is
// attached to the request context so handlers can scope listings by owner.
// Returns 401 for missing/invalid keys, 429 for rate-limited IPs.
func RequireAPIKey(apiKeys *APIKeyStore, sessions *SessionStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only intercept /api/ paths
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		// Key management endpoints require session auth, not bearer tokens
		if isAPIKeyManagementPath(r.URL.Path) {
			email, err := sessions.Validate(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, WithIdentity(r, email))
			return
		}

		// Session cookie first, so browsers hit the same endpoints
		if email, err := sessions.Validate(r); err == nil {
			next.ServeHTTP(w, WithIdentity(r, email))
			return
		}

		ip := r.RemoteAddr

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		key := strings.TrimPrefix(authHeader, "Bearer ")

		if apiKeyLimiter.limited(ip) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		email, valid, err := apiKeys.Validate(key)
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if !valid {
			// Only failed keys count toward the limit
			apiKeyLimiter.recordFailure(ip)
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, WithIdentity(r, email))
	})
}

func isPublicPath(path string) bool {
	if path == "/health" || path == "/auth/login" || path == "/auth/verify" || path == "/auth/logout" {
		return true
	}
	// CLI login flow runs before the user has a session
	if strings.HasPrefix(path, "/cli/auth") {
		return true
	}
	// Passkey login endpoints must be public (user isn't authenticated yet)
	if path == "/passkey/login/begin" || path == "/passkey/login/finish" {
		return true
	}
	return false
}

func isAPIKeyManagementPath(path string) bool {
	return path == "/api/keys" || strings.HasPrefix(path, "/api/keys/")
}
