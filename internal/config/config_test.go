package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MacroDash/internal/model"
)

var envKeys = []string{
	"FRED_API_KEY", "FRED_BASE_URL", "YAHOO_BASE_URL", "LISTEN_ADDR", "CACHE_TTL",
	"CACHE_REFRESH_CRON", "REDIS_URL", "SQLITE_PATH", "DATA_SOURCE", "HTTPS_PROXY", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8501", cfg.Server.Addr)
	assert.Equal(t, "24h", cfg.Cache.TTL)
	assert.Equal(t, "0 0 6 * * *", cfg.Cache.RefreshCron)
	assert.Equal(t, "live", cfg.DataSource)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.FRED.APIKey)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fred:
  api_key: from-yaml
server:
  addr: ":9000"
cache:
  ttl: 6h
  redis_url: redis://localhost:6379/0
database:
  sqlite_path: data/refresh.db
`), 0o644))
	t.Setenv("FRED_API_KEY", "from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.FRED.APIKey)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, "data/refresh.db", cfg.Database.SQLitePath)
	assert.Equal(t, "debug", cfg.LogLevel)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, ttl)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fred: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_MissingAPIKey(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConfiguration))
	assert.Contains(t, err.Error(), "FRED_API_KEY")
}

func TestValidate_MockNeedsNoKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_SOURCE", "mock")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"bad ttl", func(c *Config) { c.Cache.TTL = "daily" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = "-1h" }},
		{"bad cron", func(c *Config) { c.Cache.RefreshCron = "every morning" }},
		{"five field cron", func(c *Config) { c.Cache.RefreshCron = "0 6 * * *" }},
		{"bad source", func(c *Config) { c.DataSource = "csv" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load("")
			require.NoError(t, err)
			cfg.FRED.APIKey = "k"
			tt.mut(cfg)
			assert.ErrorIs(t, cfg.Validate(), model.ErrConfiguration)
		})
	}
}

func TestRefreshSpec_Off(t *testing.T) {
	cfg := &Config{}
	cfg.FRED.APIKey = "k"
	cfg.DataSource = "live"
	cfg.Cache.TTL = "0"
	cfg.Cache.RefreshCron = "off"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "", cfg.RefreshSpec())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("FRED_API_KEY")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FRED_API_KEY=dotenv-key\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.FRED.APIKey)

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
