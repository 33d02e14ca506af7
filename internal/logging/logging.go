// ABOUTME: zerolog logger construction shared by the CLI, server, and MCP process.
// ABOUTME: JSON by default, human-readable console output on request.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w at level in format "json" or "console".
// An unparseable level falls back to info.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Component returns a child logger tagged with a component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
