// Package config loads the application configuration from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	DataDir   string            `yaml:"data_dir"`
	Symbols   map[string]string `yaml:"symbols"` // symbol -> CSV filename
	Timeframe string            `yaml:"timeframe"`

	ListenAddr      string  `yaml:"listen_addr"`
	StartingCapital float64 `yaml:"starting_capital"`

	From string `yaml:"from"` // inclusive, YYYY-MM-DD; empty means unbounded
	To   string `yaml:"to"`   // inclusive, YYYY-MM-DD; empty means unbounded

	PostgresDSN string `yaml:"postgres_dsn"` // optional warm cache
	LogLevel    string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir: "data",
		Symbols: map[string]string{
			"ACC":        "ACC-15minute.csv",
			"ADANIENT":   "ADANIENT-15minute.csv",
			"ADANIPOWER": "ADANIPOWER-15minute.csv",
			"ADANIPORTS": "ADANIPORTS-15minute.csv",
		},
		Timeframe:       "15m",
		ListenAddr:      ":8080",
		StartingCapital: 100000,
		LogLevel:        "info",
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing path leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	// A .env file is optional.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("DASHBOARD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DASHBOARD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DASHBOARD_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for mistakes that would only
// surface later.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}
	if c.StartingCapital <= 0 {
		return fmt.Errorf("starting_capital must be positive, got %f", c.StartingCapital)
	}
	if _, err := c.FromTime(); err != nil {
		return err
	}
	if _, err := c.ToTime(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// FromTime parses the From date. The zero time means unbounded.
func (c Config) FromTime() (time.Time, error) {
	return parseDate(c.From, "from")
}

// ToTime parses the To date. The zero time means unbounded; a set date
// covers the whole day.
func (c Config) ToTime() (time.Time, error) {
	t, err := parseDate(c.To, "to")
	if err != nil || t.IsZero() {
		return t, err
	}
	return t.Add(24*time.Hour - time.Nanosecond), nil
}

func parseDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q: %w", field, s, err)
	}
	return t.UTC(), nil
}

// SetupLogging applies the configured log level.
func (c Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
