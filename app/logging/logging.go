// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text or JSON handler writing to stderr as the default
// slog logger. Debug enables debug level output.
func Setup(format string, debug bool) *slog.Logger {
	logger := New(os.Stderr, format, debug)
	slog.SetDefault(logger)
	return logger
}

func New(w io.Writer, format string, debug bool) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	if debug {
		lvl.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
