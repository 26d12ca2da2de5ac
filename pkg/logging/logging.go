// Package logging configures structured logging for log/slog.
//
// Usage:
//
//	logging.Setup()                                 // INFO level, from LOG_LEVEL env
//	logging.SetupWithLevel(slog.LevelDebug)         // explicit level override
//	logging.SetupWithFormat(slog.LevelInfo, "json") // JSON lines for production
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	SetupWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	SetupWithFormat(level, "text")
}

// SetupWithFormat configures logging at the given level. Format "json" writes
// JSON lines to stdout; anything else writes colored text to stderr.
func SetupWithFormat(level slog.Level, format string) {
	if format == "json" {
		slog.SetDefault(slog.New(NewHandler(os.Stdout, level, format)))
		return
	}
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, format)))
}

// NewHandler returns the handler SetupWithFormat installs, writing to w.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

// ParseLevel maps debug, warn and error to their levels. Anything else is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
