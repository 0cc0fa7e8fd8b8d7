// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// NewLogger creates a configured slog.Logger writing to stderr.
func NewLogger(cfg Config) *slog.Logger {
	return NewLoggerTo(os.Stderr, cfg)
}

// NewLoggerTo creates a configured slog.Logger writing to w.
func NewLoggerTo(w io.Writer, cfg Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		// Add a source location for debug and error levels
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// DefaultConfig returns the default logger configuration.
// GORADIO_LOG_LEVEL selects the level (DEBUG, INFO, WARN, WARNING, ERROR; default INFO)
// and GORADIO_LOG_FORMAT selects the handler ("text" or "json"; default text).
func DefaultConfig() Config {
	format := "text"
	if strings.EqualFold(os.Getenv("GORADIO_LOG_FORMAT"), "json") {
		format = "json"
	}

	return Config{
		Level:  ParseLevel(os.Getenv("GORADIO_LOG_LEVEL"), slog.LevelInfo),
		Format: format,
	}
}

// ParseLevel converts a level name to a slog.Level.
// Unknown or empty names yield fallback.
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return fallback
	}
}
