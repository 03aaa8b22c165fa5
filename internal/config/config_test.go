package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/timexdr/internal/gps"
	"example.com/timexdr/internal/session"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timexdr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(&cfg))
	require.Equal(t, "metric", cfg.Units)
	require.Equal(t, -1, cfg.SinceDays)
	require.Equal(t, "abort", cfg.OnSessionError)
	require.Equal(t, FormatText, cfg.Output.Format)
	require.Equal(t, "zstd", cfg.Archive.Codec)
	require.Empty(t, cfg.Logs.Directory)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
units: imperial
timezone: UTC
sinceDays: 3
onSessionError: skip
dedup: true
output:
  format: ndjson
  dir: out
archive:
  dir: dumps
  codec: lz4
logs:
  directory: logs
  maxSizeMB: 1
verbosity: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	base := filepath.Dir(path)
	require.Equal(t, "imperial", cfg.Units)
	require.Equal(t, filepath.Join(base, "out"), cfg.Output.Dir)
	require.Equal(t, filepath.Join(base, "dumps"), cfg.Archive.Dir)
	require.Equal(t, filepath.Join(base, "logs"), cfg.Logs.Directory)
	require.Equal(t, 1, cfg.Logs.MaxSizeMB)
	require.Equal(t, 30, cfg.Logs.MaxAgeDays)
	require.Equal(t, 2, cfg.Verbosity)

	now := time.Date(2006, 5, 21, 15, 0, 0, 0, time.UTC)
	opts, err := cfg.SessionOptions(now)
	require.NoError(t, err)
	require.Equal(t, gps.Imperial, opts.Units)
	require.Equal(t, session.PolicySkip, opts.Policy)
	require.Equal(t, time.Date(2006, 5, 18, 0, 0, 0, 0, time.UTC), opts.Since)
	require.NotNil(t, opts.Dedup)
}

func TestLoadAllSessions(t *testing.T) {
	cfg, err := Load(writeConfig(t, "timezone: UTC\n"))
	require.NoError(t, err)
	opts, err := cfg.SessionOptions(time.Now())
	require.NoError(t, err)
	require.True(t, opts.Since.IsZero())
	require.Nil(t, opts.Dedup)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "unit: metric\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"units", func(c *Config) { c.Units = "furlongs" }},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"since", func(c *Config) { c.SinceDays = -2 }},
		{"policy", func(c *Config) { c.OnSessionError = "retry" }},
		{"format", func(c *Config) { c.Output.Format = "csv" }},
		{"fit dir", func(c *Config) { c.Output.Format = FormatFIT; c.Output.Dir = "" }},
		{"codec", func(c *Config) { c.Archive.Codec = "gzip" }},
		{"lang", func(c *Config) { c.Report.Lang = "xx" }},
		{"verbosity", func(c *Config) { c.Verbosity = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			before := cfg
			require.Error(t, Validate(&cfg))
			require.Equal(t, before, cfg)
		})
	}
}
