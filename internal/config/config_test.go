package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "15m", cfg.Timeframe)
	assert.Len(t, cfg.Symbols, 4)
	assert.Equal(t, "ACC-15minute.csv", cfg.Symbols["ACC"])
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
data_dir: /srv/market-data
listen_addr: ":9090"
starting_capital: 50000
from: "2015-02-02"
to: "2019-05-15"
symbols:
  ACC: ACC-15minute.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/market-data", cfg.DataDir)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.InDelta(t, 50000.0, cfg.StartingCapital, 0.0001)

	from, err := cfg.FromTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 2, 2, 0, 0, 0, 0, time.UTC), from)

	to, err := cfg.ToTime()
	require.NoError(t, err)
	assert.True(t, to.After(time.Date(2019, 5, 15, 23, 59, 59, 0, time.UTC)))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"no symbols", func(c *Config) { c.Symbols = nil }},
		{"non-positive capital", func(c *Config) { c.StartingCapital = 0 }},
		{"bad from date", func(c *Config) { c.From = "02-02-2015" }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_LISTEN_ADDR", ":7000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr)
}
