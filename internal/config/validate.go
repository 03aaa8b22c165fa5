package config

import (
	"fmt"
	"time"

	"example.com/timexdr/internal/archive"
	"example.com/timexdr/internal/gps"
	"example.com/timexdr/internal/report"
	"example.com/timexdr/internal/session"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	if _, err := gps.ParseUnits(cfg.Units); err != nil {
		return fmt.Errorf("units: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.SinceDays < -1 {
		return fmt.Errorf("sinceDays must be -1 or greater, got %d", cfg.SinceDays)
	}
	if _, err := session.ParsePolicy(cfg.OnSessionError); err != nil {
		return fmt.Errorf("onSessionError: %w", err)
	}
	switch cfg.Output.Format {
	case FormatText, FormatNDJSON, FormatFIT:
	default:
		return fmt.Errorf("output.format %q: want text, ndjson or fit", cfg.Output.Format)
	}
	if cfg.Output.Format == FormatFIT && cfg.Output.Dir == "" {
		return fmt.Errorf("output.format fit requires output.dir")
	}
	if _, err := archive.ParseCodec(cfg.Archive.Codec); err != nil {
		return fmt.Errorf("archive.codec: %w", err)
	}
	if _, err := report.ParseLanguage(cfg.Report.Lang); err != nil {
		return fmt.Errorf("report.lang: %w", err)
	}
	if cfg.Verbosity < 0 {
		return fmt.Errorf("verbosity must not be negative")
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// SessionOptions builds dispatcher options from the configuration. now
// anchors the since filter.
func (c Config) SessionOptions(now time.Time) (session.Options, error) {
	var opts session.Options
	units, err := gps.ParseUnits(c.Units)
	if err != nil {
		return opts, err
	}
	policy, err := session.ParsePolicy(c.OnSessionError)
	if err != nil {
		return opts, err
	}
	loc, err := c.Location()
	if err != nil {
		return opts, err
	}
	opts = session.Options{Units: units, Policy: policy, Location: loc}
	if c.SinceDays >= 0 {
		opts.Since = session.MidnightDaysAgo(now.In(loc), c.SinceDays)
	}
	if c.Dedup {
		opts.Dedup = session.NewDedup()
	}
	return opts, nil
}
