package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Agent     AgentConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `env:"SERVER_PORT" env-default:"8080"`
	Env            string        `env:"APP_ENV" env-default:"development"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
	AuthDisabled   bool          `env:"AUTH_DISABLED" env-default:"false"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" env-default:"24h"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	URL       string `env:"DATABASE_URL" env-default:"ws://localhost:8000"`
	Namespace string `env:"DATABASE_NAMESPACE" env-default:"cigno"`
	Database  string `env:"DATABASE_NAME" env-default:"platform"`
	User      string `env:"DATABASE_USER" env-default:"root"`
	Password  string `env:"DATABASE_PASSWORD" env-default:"root"`
}

// JWTConfig holds access token signing settings
type JWTConfig struct {
	PrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH" env-default:"./keys/private.pem"`
	PublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH" env-default:"./keys/public.pem"`
	ExpirationMins int    `env:"JWT_EXPIRATION_MINS" env-default:"60"`
	Issuer         string `env:"JWT_ISSUER" env-default:"cigno-platform"`
}

// AgentConfig holds settings for the external custom agent API
type AgentConfig struct {
	BaseURL               string        `env:"AGENT_BASE_URL"`
	APIKey                string        `env:"AGENT_API_KEY"`
	AgentID               string        `env:"AGENT_ID"`
	Timeout               time.Duration `env:"AGENT_TIMEOUT" env-default:"30s"`
	RatePerSecond         float64       `env:"AGENT_RATE_PER_SECOND" env-default:"2"`
	Burst                 int           `env:"AGENT_BURST" env-default:"4"`
	DisableRemoteAnalysis bool          `env:"DISABLE_REMOTE_ANALYSIS" env-default:"false"`
}

// CacheConfig holds the optional agent response cache settings
type CacheConfig struct {
	RedisURL string        `env:"REDIS_URL"`
	TTL      time.Duration `env:"AGENT_CACHE_TTL" env-default:"15m"`
}

// RateLimitConfig holds inbound request limits per client
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" env-default:"10"`
	Burst             int     `env:"RATE_LIMIT_BURST" env-default:"20"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("APP_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}
	if c.Server.AuthDisabled && c.IsProduction() {
		errs = append(errs, errors.New("AUTH_DISABLED cannot be used in production"))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DATABASE_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DATABASE_NAME is required"))
	}

	if c.IsProduction() {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH is required in production"))
		}
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}

	if c.Agent.IsConfigured() {
		if err := c.Agent.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("custom agent: %w", err))
		}
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got '%s'", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the connection string. It is also called on every lazy
// database access, so it must stay cheap.
func (d DatabaseConfig) Validate() error {
	if strings.TrimSpace(d.URL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is invalid: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("DATABASE_URL scheme must be ws, wss, http or https, got '%s'", u.Scheme)
	}
	return nil
}

// IsConfigured returns true if any custom agent field is set
func (a AgentConfig) IsConfigured() bool {
	return a.BaseURL != "" || a.APIKey != "" || a.AgentID != ""
}

// RemoteAnalysisEnabled reports whether project analysis may call the agent
func (a AgentConfig) RemoteAnalysisEnabled() bool {
	return a.IsConfigured() && !a.DisableRemoteAnalysis
}

// Validate checks that all required custom agent fields are present
func (a AgentConfig) Validate() error {
	var missing []string
	if a.BaseURL == "" {
		missing = append(missing, "AGENT_BASE_URL")
	}
	if a.APIKey == "" {
		missing = append(missing, "AGENT_API_KEY")
	}
	if a.AgentID == "" {
		missing = append(missing, "AGENT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if a.Timeout <= 0 {
		return errors.New("AGENT_TIMEOUT must be positive")
	}
	if a.RatePerSecond <= 0 {
		return errors.New("AGENT_RATE_PER_SECOND must be positive")
	}
	return nil
}
