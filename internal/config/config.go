// Package config loads and validates runtime configuration from the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// AdminPasswordHash is a bcrypt hash; admin access is a shared back-office
	// credential, separate from customer accounts.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH,required" validate:"required"`

	// AuthTokenSecret signs password-reset tokens.
	AuthTokenSecret string `env:"AUTH_TOKEN_SECRET,required" validate:"required,min=32"`

	// EncryptionKey protects shipping addresses at rest.
	EncryptionKey string `env:"ENCRYPTION_KEY,required" validate:"required,len=32"`

	BaseURL string `env:"BASE_URL" validate:"omitempty,url"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider  string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`

	StorageProvider    string `env:"STORAGE_PROVIDER" envDefault:"local" validate:"omitempty,oneof=local supabase"`
	UploadsRoot        string `env:"UPLOADS_ROOT" envDefault:"uploads"`
	SupabaseURL        string `env:"SUPABASE_URL" validate:"required_if=StorageProvider supabase,omitempty,url"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_KEY" validate:"required_if=StorageProvider supabase"`
	SupabaseBucket     string `env:"SUPABASE_BUCKET" validate:"required_if=StorageProvider supabase"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"Canvist <orders@canvist.example>"`
	AdminEmail   string `env:"ADMIN_EMAIL" validate:"omitempty,email"`

	SentryDSN string `env:"SENTRY_DSN"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	if c.ResendAPIKey != "" && strings.TrimSpace(c.AdminEmail) == "" {
		return fmt.Errorf("ADMIN_EMAIL is required when RESEND_API_KEY is set")
	}

	return nil
}

// SecureCookies reports whether session cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	parsed, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Scheme, "https")
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
