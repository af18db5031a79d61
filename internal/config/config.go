package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stwalsh4118/valuator/api/internal/enrichment"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Credentials CredentialsConfig
	Auth        AuthConfig
	CORS        CORSConfig
	Enrichment  EnrichmentConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// IsProduction reports whether the server runs with ENV=production.
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// DatabaseConfig holds PostgreSQL connection configuration for property records.
type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	PoolMin        int
	PoolMax        int
	ConnectTimeout time.Duration
}

// CredentialsConfig holds the location of the SQLite user database.
type CredentialsConfig struct {
	Path string
}

// AuthConfig holds session cookie configuration.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// EnrichmentConfig holds settings for the geocoding and property-data APIs.
// Empty API keys disable the corresponding lookup. Both URLs are complete
// endpoints, not API roots.
type EnrichmentConfig struct {
	GoogleAPIKey     string
	GoogleGeocodeURL string
	AttomAPIKey      string
	AttomDetailURL   string
	HTTPTimeout      time.Duration
	RatePerSecond    float64
}

// GeocodingEnabled reports whether a Google key is configured.
func (e EnrichmentConfig) GeocodingEnabled() bool {
	return e.GoogleAPIKey != ""
}

// LookupEnabled reports whether an ATTOM key is configured.
func (e EnrichmentConfig) LookupEnabled() bool {
	return e.AttomAPIKey != ""
}

var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

var logLevels = []string{"", "trace", "debug", "info", "warn", "error"}

var defaults = map[string]any{
	"PORT":                    "8080",
	"ENV":                     "development",
	"LOG_LEVEL":               "",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_NAME":                 "valuator",
	"DB_USER":                 "postgres",
	"DB_SSLMODE":              "disable",
	"DB_POOL_MIN":             2,
	"DB_POOL_MAX":             10,
	"DB_CONNECT_TIMEOUT":      "5s",
	"CREDENTIALS_DB_PATH":     "users.db",
	"SESSION_TTL":             "12h",
	"COOKIE_SECURE":           false,
	"CORS_ORIGINS":            "http://localhost:3000,http://localhost:8080",
	"GOOGLE_GEOCODING_URL":    enrichment.DefaultGoogleGeocodeURL,
	"ATTOM_DETAIL_URL":        enrichment.DefaultAttomURL,
	"ENRICHMENT_HTTP_TIMEOUT": "10s",
	"ENRICHMENT_RATE_PER_SEC": 5.0,
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			Name:           v.GetString("DB_NAME"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			PoolMin:        v.GetInt("DB_POOL_MIN"),
			PoolMax:        v.GetInt("DB_POOL_MAX"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Credentials: CredentialsConfig{
			Path: v.GetString("CREDENTIALS_DB_PATH"),
		},
		Auth: AuthConfig{
			SessionSecret: v.GetString("SESSION_SECRET"),
			SessionTTL:    v.GetDuration("SESSION_TTL"),
			CookieSecure:  v.GetBool("COOKIE_SECURE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Enrichment: EnrichmentConfig{
			GoogleAPIKey:     v.GetString("GOOGLE_GEOCODING_API_KEY"),
			GoogleGeocodeURL: v.GetString("GOOGLE_GEOCODING_URL"),
			AttomAPIKey:      v.GetString("ATTOM_API_KEY"),
			AttomDetailURL:   v.GetString("ATTOM_DETAIL_URL"),
			HTTPTimeout:      v.GetDuration("ENRICHMENT_HTTP_TIMEOUT"),
			RatePerSecond:    v.GetFloat64("ENRICHMENT_RATE_PER_SEC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// rule is one Validate check: when failed reports true, message is returned.
type rule struct {
	failed  bool
	message string
}

// Validate checks that required configuration is present and valid.
// The first failing check is reported.
func (c *Config) Validate() error {
	db := c.Database
	rules := []rule{
		{c.Server.Port == "", "PORT is required"},
		{!slices.Contains(logLevels, c.Server.LogLevel), "LOG_LEVEL must be one of trace, debug, info, warn, error"},

		{db.Host == "", "DB_HOST is required"},
		{db.Port == "", "DB_PORT is required"},
		{db.Name == "", "DB_NAME is required"},
		{db.User == "", "DB_USER is required"},
		{db.Password == "", "DB_PASSWORD is required"},
		{!slices.Contains(sslModes, db.SSLMode), "DB_SSLMODE must be a libpq sslmode"},
		{db.PoolMin < 0, "DB_POOL_MIN must be non-negative"},
		{db.PoolMax < 1, "DB_POOL_MAX must be at least 1"},
		{db.PoolMin > db.PoolMax, "DB_POOL_MIN must be less than or equal to DB_POOL_MAX"},
		{db.ConnectTimeout <= 0, "DB_CONNECT_TIMEOUT must be a positive duration"},

		{c.Credentials.Path == "", "CREDENTIALS_DB_PATH is required"},

		{len(c.Auth.SessionSecret) < 16, "SESSION_SECRET must be at least 16 characters"},
		{c.Auth.SessionTTL <= 0, "SESSION_TTL must be a positive duration"},

		{len(c.CORS.Origins) == 0, "CORS_ORIGINS is required"},

		{c.Enrichment.HTTPTimeout <= 0, "ENRICHMENT_HTTP_TIMEOUT must be a positive duration"},
		{c.Enrichment.RatePerSecond <= 0, "ENRICHMENT_RATE_PER_SEC must be positive"},
	}

	for _, r := range rules {
		if r.failed {
			return errors.New(r.message)
		}
	}
	return nil
}

// parseOrigins splits a comma-separated list of origins, dropping blanks.
func parseOrigins(origins string) []string {
	result := []string{}
	for _, part := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
