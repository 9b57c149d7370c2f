// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Config is the server environment configuration. The serve command
// loads a .env file first when one is present, then parses LH_* vars.
type Config struct {
	Port       int    `env:"LH_PORT" envDefault:"8080"`
	DBPath     string `env:"LH_DB_PATH"`
	AdminEmail string `env:"LH_ADMIN_EMAIL"`
	BaseURL    string `env:"LH_BASE_URL"`
	DevMode    bool   `env:"LH_DEV_MODE" envDefault:"false"`

	SMTPHost string `env:"LH_SMTP_HOST"`
	SMTPPort int    `env:"LH_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"LH_SMTP_USER"`
	SMTPPass string `env:"LH_SMTP_PASS"`
	SMTPFrom string `env:"LH_SMTP_FROM"`

	SheetsCredentials string `env:"LH_SHEETS_CREDENTIALS"`
	SheetName         string `env:"LH_SHEET_NAME" envDefault:"listings"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	return &cfg, nil
}
