// Package config loads historylog settings from HISTORYLOG_* environment
// variables and builds the process logger.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Color modes accepted by HISTORYLOG_COLOR.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds settings shared by every command. Command-line flags
// override these values.
type Config struct {
	SessionsDir string `env:"HISTORYLOG_SESSIONS_DIR"`
	LogLevel    string `env:"HISTORYLOG_LOG_LEVEL" envDefault:"warn"`
	Format      string `env:"HISTORYLOG_FORMAT"    envDefault:"table"`
	Color       string `env:"HISTORYLOG_COLOR"     envDefault:"auto"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and fills in derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SessionsDir == "" {
		cfg.SessionsDir = DefaultSessionsDir()
	}
	cfg.Color = strings.ToLower(cfg.Color)
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return Config{}, fmt.Errorf("invalid HISTORYLOG_COLOR value: %s", cfg.Color)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultSessionsDir returns ~/.historylog/sessions, or a relative
// "sessions" directory when the home directory is unknown.
func DefaultSessionsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sessions"
	}
	return filepath.Join(home, ".historylog", "sessions")
}

// ParseLevel maps a level name such as "debug" or "WARN" to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
