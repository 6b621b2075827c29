// Package config loads all application configuration from environment
// variables (with .env support) into one structured value owned by the
// composition root.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	TMDB       TMDBConfig
	OMDB       OMDBConfig
	Jellyseerr JellyseerrConfig
	RateLimit  RateLimitConfig
	Retry      RetryConfig
	Cache      CacheConfig
}

type AppConfig struct {
	Version        string
	Port           string
	Debug          bool
	Environment    string
	BasePath       string
	TrustedProxies []string
	CorsOrigins    []string
}

type PathsConfig struct {
	Storages string
	Cache    string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // file path for SQLite, database name for Postgres
}

type TMDBConfig struct {
	APIKey          string
	RefreshInterval time.Duration
}

type OMDBConfig struct {
	APIKey string
}

type JellyseerrConfig struct {
	APIKey string
	URL    string
}

type RateLimitConfig struct {
	RequestsPerSecond int
	BurstSize         int
}

type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

type CacheConfig struct {
	TTL          time.Duration
	MaxEntries   int
	SaveInterval time.Duration
}

// LoadConfig builds a Config from environment variables and defaults.
func LoadConfig() (*Config, error) {
	storages := getEnv("APP_STORAGES_PATH", "storages")

	cfg := &Config{
		App: AppConfig{
			Version:        "v1.2.0",
			Port:           getEnv("APP_PORT", "3000"),
			Debug:          getEnvBool("APP_DEBUG", false),
			Environment:    getEnv("APP_ENV", "development"),
			BasePath:       getEnv("APP_BASE_PATH", ""),
			TrustedProxies: getEnvList("APP_TRUSTED_PROXIES"),
			CorsOrigins:    getEnvListDefault("APP_CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Paths: PathsConfig{
			Storages: storages,
			Cache:    getEnv("APP_CACHE_PATH", filepath.Join(storages, "cache")),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", filepath.Join(storages, "releaserr.db")),
		},
		TMDB: TMDBConfig{
			APIKey:          getEnv("TMDB_API_KEY", ""),
			RefreshInterval: getEnvDuration("TMDB_REFRESH_INTERVAL", time.Hour),
		},
		OMDB: OMDBConfig{
			APIKey: getEnv("OMDB_API_KEY", ""),
		},
		Jellyseerr: JellyseerrConfig{
			APIKey: getEnv("JELLYSEERR_API_KEY", ""),
			URL:    getEnv("JELLYSEERR_URL", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvInt("RATE_LIMIT_RPS", 10),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Retry: RetryConfig{
			MaxRetries:   getEnvInt("RETRY_MAX_RETRIES", 3),
			InitialDelay: getEnvDuration("RETRY_INITIAL_DELAY", 500*time.Millisecond),
			MaxDelay:     getEnvDuration("RETRY_MAX_DELAY", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL:          getEnvDuration("CACHE_TTL", 24*time.Hour),
			MaxEntries:   getEnvInt("CACHE_MAX_ENTRIES", 1000),
			SaveInterval: getEnvDuration("CACHE_SAVE_INTERVAL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.TMDB,
		validation.Field(&c.TMDB.APIKey, validation.Required.Error("TMDB_API_KEY is required")),
	); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.OMDB,
		validation.Field(&c.OMDB.APIKey, validation.Required.Error("OMDB_API_KEY is required")),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&c.Jellyseerr,
		validation.Field(&c.Jellyseerr.APIKey, validation.Required.Error("JELLYSEERR_API_KEY is required")),
		validation.Field(&c.Jellyseerr.URL, validation.Required.Error("JELLYSEERR_URL is required"), is.URL),
	)
}
