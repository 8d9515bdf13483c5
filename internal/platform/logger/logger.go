// Package logger builds the daemon's structured logger.
package logger

import (
	"log/slog"
	"os"

	"auditlog/internal/platform/config"
)

// New returns a slog.Logger writing JSON or text to stdout per cfg.Format,
// at the level named by cfg.Level (defaulting to info on an unknown name).
func New(cfg config.LoggingConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
