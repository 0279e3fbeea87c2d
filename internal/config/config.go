package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Generation
	GeminiAPIKey      string // env: GEMINI_API_KEY, falls back to API_KEY
	GeminiModel       string
	GeminiBaseURL     string        // Overrides the API endpoint, mostly for tests
	GenerationTimeout time.Duration // 0 means no timeout

	// State
	RedisURL       string // When set, sessions and visitor state live in Redis
	StateCacheSize int    // Visitors kept by the in-memory store

	// Usage counters
	DatabaseURL        string // Optional, enables durable usage counters
	UsageFlushInterval time.Duration

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Session
	SessionSecret string // Used for encrypting cookies (base64, 32 bytes)
	SessionTTL    time.Duration

	// Rate limiting of submit routes, requests per minute per client. 0 disables it.
	SubmitRateLimit int

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Logging
	LogLevel  string
	LogFormat string // "console" or "json"

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "SmartRoute"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Env:           getEnv("ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:    getEnv("SESSION_SECRET", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		SiteTitle:   getEnv("SITE_TITLE", "SmartRoute"),
		SiteTagline: getEnv("SITE_TAGLINE", "Prospecting and route planning for field sales"),
		SiteFooter:  getEnv("SITE_FOOTER", "SmartRoute - powered by Gemini and Google Maps"),
	}

	var err error
	if cfg.GenerationTimeout, err = getDuration("GENERATION_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.UsageFlushInterval, err = getDuration("USAGE_FLUSH_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.StateCacheSize, err = getInt("STATE_CACHE_SIZE", 4096); err != nil {
		return nil, err
	}
	if cfg.SubmitRateLimit, err = getInt("SUBMIT_RATE_LIMIT", 20); err != nil {
		return nil, err
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDev() {
			cfg.LogFormat = "console"
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative duration such as 30s", key, value)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: expected a non-negative integer", key, value)
	}
	return n, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsAuthEnabled returns true if an OIDC issuer is configured.
func (c *Config) IsAuthEnabled() bool {
	return c.OIDCIssuer != ""
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY (or API_KEY) is required")
	}
	if c.IsAuthEnabled() && (c.OIDCClientID == "" || c.OIDCClientSecret == "") {
		return fmt.Errorf("OIDC_CLIENT_ID and OIDC_CLIENT_SECRET are required when OIDC_ISSUER is set")
	}
	return nil
}
