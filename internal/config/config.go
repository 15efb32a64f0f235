// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Public site origin; profile pages live at PUBLIC_BASE_URL/{username}
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Session tokens issued by the external auth provider
	AuthJWTSecret string `env:"AUTH_JWT_SECRET,required"`
	AuthJWTIssuer string `env:"AUTH_JWT_ISSUER"`

	// Rate limiting of the public tracking endpoints
	RateLimitTrackEnabled bool `env:"RATE_LIMIT_TRACK_ENABLED" envDefault:"true"`
	RateLimitTrackRPS     int  `env:"RATE_LIMIT_TRACK_RPS" envDefault:"20"`
	RateLimitTrackBurst   int  `env:"RATE_LIMIT_TRACK_BURST" envDefault:"40"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,*.webboss.link")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Public page and event recording
	PublicPageCacheTTL time.Duration `env:"PUBLIC_PAGE_CACHE_TTL" envDefault:"5m"`
	RecordTimeout      time.Duration `env:"RECORD_TIMEOUT" envDefault:"3s"`
	RecordMaxInFlight  int           `env:"RECORD_MAX_IN_FLIGHT" envDefault:"256"`

	// Analytics
	AnalyticsTimezone string        `env:"ANALYTICS_TIMEZONE" envDefault:"UTC"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"15m"` // 0 disables
	GeoIPDBPath       string        `env:"GEOIP_DB_PATH"`                       // empty disables
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Location returns the zone of the hour-of-day histogram.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.AnalyticsTimezone)
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("ANALYTICS_TIMEZONE: %w", err)
	}
	if c.IsProduction() && len(c.AuthJWTSecret) < 32 {
		return errors.New("AUTH_JWT_SECRET must be at least 32 bytes in production")
	}
	if c.RateLimitTrackEnabled && (c.RateLimitTrackRPS <= 0 || c.RateLimitTrackBurst <= 0) {
		return errors.New("RATE_LIMIT_TRACK_RPS and RATE_LIMIT_TRACK_BURST must be positive")
	}
	if c.RecordTimeout <= 0 {
		return errors.New("RECORD_TIMEOUT must be positive")
	}
	if c.ReconcileInterval < 0 || c.PublicPageCacheTTL < 0 {
		return errors.New("RECONCILE_INTERVAL and PUBLIC_PAGE_CACHE_TTL must not be negative")
	}
	return nil
}

// Load reads an optional .env file, parses environment variables and
// returns a validated Config. Variables already set in the environment win
// over the file.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv files. Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
