package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger    = log.New(os.Stderr, "[timexdr] ", log.LstdFlags|log.Lmicroseconds)
	verbosity = 0
)

// LogConfig controls where log output goes in addition to stderr.
type LogConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// SetupLogging mirrors log output into a rotating file under cfg.Directory.
// An empty directory keeps logging on stderr only.
func SetupLogging(cfg LogConfig, name string) (io.Closer, error) {
	if cfg.Directory == "" {
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, name+".log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator, nil
}

// SetOutput replaces the log destination.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetVerbosity sets the level at which Debugf starts printing.
func SetVerbosity(level int) {
	verbosity = level
}

func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

// Debugf logs only when verbosity is at least 1.
func Debugf(format string, args ...interface{}) {
	if verbosity > 0 {
		logger.Printf(format, args...)
	}
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
