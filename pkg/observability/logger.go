// Package observability configures structured logging for gitvars.
// Diagnostics go exclusively to stderr; stdout is reserved for the
// shell-evaluable variable stream and must never carry log output.
package observability

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a text slog.Logger writing to out at the given level.
// Unknown level names fall back to warn so a typo in configuration cannot
// silence errors or flood stderr.
func NewLogger(out io.Writer, level string) *slog.Logger {
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelWarn
}
