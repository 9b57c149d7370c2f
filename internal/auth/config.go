// Package auth provides authentication via magic link email, passkeys,
// sessions, and API keys. An authenticated email is the owner identity
// stamped onto listings.
package auth

// Config holds authentication configuration. The serve command builds
// it from the server environment config.
type Config struct {
	AdminEmail string
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string
	DevMode    bool
	BaseURL    string // e.g. http://localhost:8080
}
