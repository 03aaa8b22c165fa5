package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"example.com/timexdr/internal/common"
)

type Config struct {
	Units    string `yaml:"units"`
	Timezone string `yaml:"timezone"`
	// SinceDays keeps sessions from local midnight that many days ago
	// onwards; -1 keeps every session.
	SinceDays      int              `yaml:"sinceDays"`
	OnSessionError string           `yaml:"onSessionError"`
	Dedup          bool             `yaml:"dedup"`
	Output         OutputConfig     `yaml:"output"`
	Archive        ArchiveConfig    `yaml:"archive"`
	Report         ReportConfig     `yaml:"report"`
	Logs           common.LogConfig `yaml:"logs"`
	Verbosity      int              `yaml:"verbosity"`
}

type OutputConfig struct {
	Format          string `yaml:"format"`
	Dir             string `yaml:"dir"`
	PerSessionFiles bool   `yaml:"perSessionFiles"`
}

type ArchiveConfig struct {
	Dir   string `yaml:"dir"`
	Codec string `yaml:"codec"`
}

type ReportConfig struct {
	Lang string `yaml:"lang"`
}

// Output formats.
const (
	FormatText   = "text"
	FormatNDJSON = "ndjson"
	FormatFIT    = "fit"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.SinceDays = -1
	applyDefaults(&cfg, ".")
	return cfg
}

// Load reads a YAML configuration file, fills in defaults and validates it.
// Relative directories are resolved against the file's directory.
func Load(path string) (Config, error) {
	cfg := Config{SinceDays: -1}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg, filepath.Dir(path))
	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config, baseDir string) {
	resolvePath := func(p string) string {
		p = strings.TrimSpace(p)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Clean(filepath.Join(baseDir, p))
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.OnSessionError == "" {
		cfg.OnSessionError = "abort"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatText
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	cfg.Output.Dir = resolvePath(cfg.Output.Dir)
	if cfg.Archive.Codec == "" {
		cfg.Archive.Codec = "zstd"
	}
	cfg.Archive.Dir = resolvePath(cfg.Archive.Dir)
	if cfg.Report.Lang == "" {
		cfg.Report.Lang = "en"
	}
	cfg.Logs.Directory = resolvePath(cfg.Logs.Directory)
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 10
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 30
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 3
	}
}
