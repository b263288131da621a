package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"MacroDash/internal/model"
)

// Config holds all application configuration.
type Config struct {
	FRED struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"fred"`
	Yahoo struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"yahoo"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Cache struct {
		TTL         string `yaml:"ttl"`
		RefreshCron string `yaml:"refresh_cron"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	DataSource string `yaml:"data_source"` // "live" or "mock"
	Proxy      string `yaml:"proxy"`
	LogLevel   string `yaml:"log_level"`
}

// LoadDotEnv populates the process environment from a .env-style file.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	overrides := []struct {
		env string
		dst *string
	}{
		{"FRED_API_KEY", &cfg.FRED.APIKey},
		{"FRED_BASE_URL", &cfg.FRED.BaseURL},
		{"YAHOO_BASE_URL", &cfg.Yahoo.BaseURL},
		{"LISTEN_ADDR", &cfg.Server.Addr},
		{"CACHE_TTL", &cfg.Cache.TTL},
		{"CACHE_REFRESH_CRON", &cfg.Cache.RefreshCron},
		{"REDIS_URL", &cfg.Cache.RedisURL},
		{"SQLITE_PATH", &cfg.Database.SQLitePath},
		{"DATA_SOURCE", &cfg.DataSource},
		{"HTTPS_PROXY", &cfg.Proxy},
		{"LOG_LEVEL", &cfg.LogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8501"
	}
	if cfg.Cache.TTL == "" {
		cfg.Cache.TTL = "24h"
	}
	if cfg.Cache.RefreshCron == "" {
		cfg.Cache.RefreshCron = "0 0 6 * * *"
	}
	if cfg.DataSource == "" {
		cfg.DataSource = "live"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set. Every failure wraps
// model.ErrConfiguration.
func (c *Config) Validate() error {
	if c.DataSource != "live" && c.DataSource != "mock" {
		return fmt.Errorf("%w: data_source must be live or mock, got %q", model.ErrConfiguration, c.DataSource)
	}
	if c.DataSource == "live" && strings.TrimSpace(c.FRED.APIKey) == "" {
		return fmt.Errorf("%w: FRED_API_KEY is required", model.ErrConfiguration)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Cache.RefreshCron != "off" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Cache.RefreshCron); err != nil {
			return fmt.Errorf("%w: cache.refresh_cron: %v", model.ErrConfiguration, err)
		}
	}
	return nil
}

// CacheTTL parses cache.ttl; "0" disables expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: cache.ttl %q is not a valid duration", model.ErrConfiguration, c.Cache.TTL)
	}
	return d, nil
}

// RefreshSpec returns the cron spec for timed refreshes, empty when disabled.
func (c *Config) RefreshSpec() string {
	if c.Cache.RefreshCron == "off" {
		return ""
	}
	return c.Cache.RefreshCron
}
