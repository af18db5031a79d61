package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stwalsh4118/valuator/api/internal/enrichment"
)

const testSecret = "0123456789abcdef-test-secret"

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars()

	// Password and session secret have no default
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected host localhost, got %s", cfg.Database.Host)
	}
	if cfg.Database.Name != "valuator" {
		t.Errorf("Expected db name valuator, got %s", cfg.Database.Name)
	}
	if cfg.Database.PoolMin != 2 || cfg.Database.PoolMax != 10 {
		t.Errorf("Expected pool 2..10, got %d..%d", cfg.Database.PoolMin, cfg.Database.PoolMax)
	}
	if cfg.Credentials.Path != "users.db" {
		t.Errorf("Expected credentials path users.db, got %s", cfg.Credentials.Path)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("Expected session ttl 12h, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.CookieSecure {
		t.Error("Expected insecure cookies by default")
	}
	if cfg.Enrichment.HTTPTimeout != 10*time.Second {
		t.Errorf("Expected enrichment timeout 10s, got %s", cfg.Enrichment.HTTPTimeout)
	}
	if cfg.Enrichment.GoogleGeocodeURL != enrichment.DefaultGoogleGeocodeURL {
		t.Errorf("Expected default geocode endpoint, got %s", cfg.Enrichment.GoogleGeocodeURL)
	}
	if !strings.HasSuffix(cfg.Enrichment.AttomDetailURL, "/property/detail") {
		t.Errorf("Expected ATTOM property detail endpoint, got %s", cfg.Enrichment.AttomDetailURL)
	}
	if cfg.Enrichment.AttomAPIKey != "" {
		t.Errorf("Expected no ATTOM key by default, got %s", cfg.Enrichment.AttomAPIKey)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Expected sslmode disable, got %s", cfg.Database.SSLMode)
	}
	if cfg.Database.ConnectTimeout != 5*time.Second {
		t.Errorf("Expected connect timeout 5s, got %s", cfg.Database.ConnectTimeout)
	}
	if cfg.Server.LogLevel != "" {
		t.Errorf("Expected no log level override, got %s", cfg.Server.LogLevel)
	}
	if cfg.Enrichment.GeocodingEnabled() || cfg.Enrichment.LookupEnabled() {
		t.Error("Expected enrichment disabled without API keys")
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()

	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_POOL_MIN", "5")
	t.Setenv("DB_POOL_MAX", "20")
	t.Setenv("CREDENTIALS_DB_PATH", "/var/lib/valuator/users.db")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	t.Setenv("GOOGLE_GEOCODING_API_KEY", "g-key")
	t.Setenv("ATTOM_API_KEY", "a-key")
	t.Setenv("ENRICHMENT_HTTP_TIMEOUT", "3s")
	t.Setenv("ENRICHMENT_RATE_PER_SEC", "2.5")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if !cfg.Server.IsProduction() {
		t.Errorf("Expected env production, got %s", cfg.Server.Env)
	}
	if cfg.Server.LogLevel != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.Server.LogLevel)
	}
	if cfg.Database.SSLMode != "require" {
		t.Errorf("Expected sslmode require, got %s", cfg.Database.SSLMode)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected host db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Database.PoolMin != 5 || cfg.Database.PoolMax != 20 {
		t.Errorf("Expected pool 5..20, got %d..%d", cfg.Database.PoolMin, cfg.Database.PoolMax)
	}
	if cfg.Credentials.Path != "/var/lib/valuator/users.db" {
		t.Errorf("Unexpected credentials path %s", cfg.Credentials.Path)
	}
	if cfg.Auth.SessionTTL != 30*time.Minute {
		t.Errorf("Expected session ttl 30m, got %s", cfg.Auth.SessionTTL)
	}
	if !cfg.Auth.CookieSecure {
		t.Error("Expected secure cookies")
	}
	if cfg.Enrichment.GoogleAPIKey != "g-key" || cfg.Enrichment.AttomAPIKey != "a-key" {
		t.Error("Expected enrichment API keys from environment")
	}
	if !cfg.Enrichment.GeocodingEnabled() || !cfg.Enrichment.LookupEnabled() {
		t.Error("Expected enrichment enabled with API keys")
	}
	if cfg.Enrichment.HTTPTimeout != 3*time.Second {
		t.Errorf("Expected timeout 3s, got %s", cfg.Enrichment.HTTPTimeout)
	}
	if cfg.Enrichment.RatePerSecond != 2.5 {
		t.Errorf("Expected rate 2.5, got %f", cfg.Enrichment.RatePerSecond)
	}
	if cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Expected first origin http://example.com, got %s", cfg.CORS.Origins[0])
	}
}

func TestLoad_MissingPassword(t *testing.T) {
	clearConfigEnvVars()
	t.Setenv("SESSION_SECRET", testSecret)

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DB_PASSWORD is missing")
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	clearConfigEnvVars()
	t.Setenv("DB_PASSWORD", "testpass")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when SESSION_SECRET is missing")
	}
}

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "valuator",
			User: "postgres", Password: "postgres", SSLMode: "disable",
			PoolMin: 2, PoolMax: 10, ConnectTimeout: 5 * time.Second,
		},
		Credentials: CredentialsConfig{Path: "users.db"},
		Auth:        AuthConfig{SessionSecret: testSecret, SessionTTL: time.Hour},
		CORS:        CORSConfig{Origins: []string{"http://localhost:3000"}},
		Enrichment:  EnrichmentConfig{HTTPTimeout: time.Second, RatePerSecond: 1},
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db password", func(c *Config) { c.Database.Password = "" }},
		{"unknown ssl mode", func(c *Config) { c.Database.SSLMode = "sometimes" }},
		{"zero connect timeout", func(c *Config) { c.Database.ConnectTimeout = 0 }},
		{"unknown log level", func(c *Config) { c.Server.LogLevel = "verbose" }},
		{"missing credentials path", func(c *Config) { c.Credentials.Path = "" }},
		{"short session secret", func(c *Config) { c.Auth.SessionSecret = "short" }},
		{"zero session ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
		{"missing CORS origins", func(c *Config) { c.CORS.Origins = []string{} }},
		{"zero enrichment timeout", func(c *Config) { c.Enrichment.HTTPTimeout = 0 }},
		{"zero enrichment rate", func(c *Config) { c.Enrichment.RatePerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "single origin", input: "http://localhost:3000", expect: []string{"http://localhost:3000"}},
		{name: "multiple origins", input: "http://localhost:3000,http://localhost:3001", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "origins with spaces", input: " http://localhost:3000 , http://localhost:3001 ", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "empty string", input: "", expect: []string{}},
		{name: "only commas", input: ",,,", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}

// clearConfigEnvVars unsets every variable Load reads.
func clearConfigEnvVars() {
	for key := range defaults {
		os.Unsetenv(key)
	}
	for _, key := range []string{"DB_PASSWORD", "SESSION_SECRET", "GOOGLE_GEOCODING_API_KEY", "ATTOM_API_KEY"} {
		os.Unsetenv(key)
	}
}
