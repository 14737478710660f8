// Package logger provides structured logging for the mission server.
// Every subsystem receives the same *Logger so bridge activity stays traceable.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger behind the small surface the engine and
// infrastructure packages use.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger writing human-readable output at info level.
func NewLogger() *Logger {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a logger at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func NewLoggerWithLevel(level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	return &Logger{
		zl: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.zl.Info().Msgf(msg, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.zl.Warn().Msgf(msg, args...)
}

// Error logs error messages.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.zl.Error().Msgf(msg, args...)
}

// Event logs a mission event with its type and actor attached as fields.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.zl.Info().Str("event", eventType).Str("actor", actorID).Msg(details)
}
