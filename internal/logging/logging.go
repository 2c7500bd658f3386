// Package logging builds the slog loggers used by the engine and the CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// LevelSilent sits above every standard level and suppresses all output.
const LevelSilent = slog.Level(100)

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return New(io.Discard, LevelSilent)
}

// LevelFromString converts debug|info|warn|error|silent (case-insensitive)
// to a level. Unrecognised strings map to warn.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "silent", "quiet", "off":
		return LevelSilent
	default:
		return slog.LevelWarn
	}
}

// LevelFromVerbosity lowers base by one step per -v flag, bottoming out at
// debug.
//   - verbosity=0: base
//   - verbosity=1: info (or base, if base is already lower)
//   - verbosity>=2: debug
func LevelFromVerbosity(base slog.Level, verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return base
	case verbosity == 1:
		return min(base, slog.LevelInfo)
	default:
		return slog.LevelDebug
	}
}
