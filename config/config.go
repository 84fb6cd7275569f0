// Package config decodes ambient process configuration for a wsext-based
// server from the environment, using the same envdecode conventions the
// rest of this codebase's ancestry uses for its own service configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joeshaw/envdecode"
)

// Config holds the environment-derived settings that shape how a
// permessage.Manager is constructed for each connection. It has no
// connection-specific fields; those (conn id, allowlist instance) are
// supplied by the caller at Manager construction time.
type Config struct {
	// LogLevel sets the minimum level emitted by the process-wide slog
	// logger: one of debug, info, warn, error. ENV: WSEXT_LOG_LEVEL
	LogLevel string `env:"WSEXT_LOG_LEVEL,default=info"`

	// StrictUnknownExtension controls whether an unrecognized extension
	// name in a server's activation response is treated as a negotiation
	// failure (true) or logged and ignored (false).
	// ENV: WSEXT_STRICT_UNKNOWN_EXTENSION
	StrictUnknownExtension bool `env:"WSEXT_STRICT_UNKNOWN_EXTENSION,default=true"`

	// MaxActiveSessions caps how many extensions may become active on a
	// single connection. Zero means unbounded. ENV: WSEXT_MAX_ACTIVE_SESSIONS
	MaxActiveSessions int `env:"WSEXT_MAX_ACTIVE_SESSIONS,default=0"`

	// AllowlistPath, if non-empty, points at a YAML file consulted by
	// internal/policy to restrict which extension names may be
	// registered. ENV: WSEXT_ALLOWLIST_PATH
	AllowlistPath string `env:"WSEXT_ALLOWLIST_PATH,default="`

	// AllowlistWatch enables hot-reloading AllowlistPath on change.
	// ENV: WSEXT_ALLOWLIST_WATCH
	AllowlistWatch bool `env:"WSEXT_ALLOWLIST_WATCH,default=true"`
}

// Load decodes a Config from the process environment, applying the
// defaults declared in the struct tags above when a variable is unset.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding environment: %w", err)
	}
	return cfg, nil
}

// SlogLevel parses LogLevel into a slog.Level, defaulting to Info for an
// empty or unrecognized value.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
