// Package cli holds the shared machinery behind the tablescout commands:
// global option handling, the factory that assembles a Concierge from
// configuration, and the interactive chat session.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tablescout/tablescout/internal/config"
	"github.com/tablescout/tablescout/internal/logging"
)

// DefaultConfigFile is picked up from the working directory when --config is
// not given.
const DefaultConfigFile = "tablescout.yaml"

// Options carries the persistent flags every command shares.
type Options struct {
	// ConfigPath is the --config flag. Empty falls back to
	// DefaultConfigFile when that exists, else built-in defaults.
	ConfigPath string
	// DataDir overrides data_dir from the file (--dir).
	DataDir string
	// Store overrides store.kind (--store: file, redis, memory).
	Store string
	// RedisAddr overrides store.redis and implies the redis kind (--redis).
	RedisAddr string
	// LogLevel is debug, info, warn, or error (--log-level).
	LogLevel string
}

// Logger builds the stderr logger at the configured level.
func (o Options) Logger() (*slog.Logger, error) {
	level, err := ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// Debug reports whether the log level asks for per-event engine hooks.
func (o Options) Debug() bool {
	level, err := ParseLevel(o.LogLevel)
	return err == nil && level == slog.LevelDebug
}

// ParseLevel maps the --log-level flag onto slog levels. Empty means warn:
// chat output owns stdout and logs should stay out of the way by default.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", s)
}

// LoadConfig resolves the effective configuration: defaults, then the config
// file, then environment variables, then the flag overrides, validated.
func (o Options) LoadConfig() (*config.Config, error) {
	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	cfg := config.Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		cfg, err = config.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.Store != "" {
		cfg.Store.Kind = o.Store
	}
	if o.RedisAddr != "" {
		cfg.Store.Redis = o.RedisAddr
		cfg.Store.Kind = "redis"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
