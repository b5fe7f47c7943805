package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN                    string `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// ExtractionConfig holds the settings for the image reading service.
type ExtractionConfig struct {
	APIKey         string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model          string        `yaml:"model" env:"GEMINI_MODEL"`
	Endpoint       string        `yaml:"endpoint"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load reads the configuration from the given path and overlays environment
// variables on top of it. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		log.Printf("config file %s not found; using environment only", path)
	default:
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 3000
	}
	if c.Server.CacheTTLSeconds == 0 {
		c.Server.CacheTTLSeconds = 30
	}
	if c.Server.CacheTTLSeconds > 0 {
		c.Server.CacheTTL = time.Duration(c.Server.CacheTTLSeconds) * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetimeMinutes <= 0 {
		c.Database.ConnMaxLifetimeMinutes = 30
	}

	if c.Extraction.Model == "" {
		c.Extraction.Model = "gemini-1.5-flash"
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = 30
	}
	c.Extraction.Timeout = time.Duration(c.Extraction.TimeoutSeconds) * time.Second
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("missing database dsn (DATABASE_URL)"))
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Extraction.APIKey == "" {
		errs = append(errs, errors.New("missing extraction api key (GEMINI_API_KEY)"))
	}
	return errors.Join(errs...)
}
