package shared

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// SetupLogger configures zerolog with pretty console output on stderr.
// Quiet wins over debug.
func SetupLogger(debug, quiet bool) zerolog.Logger {
	return NewLogger(os.Stderr, LogLevel(debug, quiet, ""))
}

// NewLogger writes console formatted, timestamped records to w.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// LogLevel resolves the effective level from the CLI switches and the
// level named in a config file.
func LogLevel(debug, quiet bool, configured string) zerolog.Level {
	switch {
	case quiet:
		return zerolog.WarnLevel
	case debug:
		return zerolog.DebugLevel
	}
	if lvl, err := zerolog.ParseLevel(configured); err == nil && configured != "" {
		return lvl
	}
	return zerolog.InfoLevel
}
