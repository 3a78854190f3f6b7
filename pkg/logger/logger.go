// Package logger provides structured logging for svxconf
package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger

func init() {
	// Default to text on stderr: svxconf is first of all a CLI tool and
	// stdout belongs to command output.
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetLogger allows setting a custom logger
func SetLogger(l *slog.Logger) {
	log = l
}

// SetLevel sets the log level
func SetLevel(level slog.Level) {
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// SetJSONOutput switches to JSON output (used by the API server)
func SetJSONOutput() {
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// With returns a new logger with the given attributes
func With(args ...any) *slog.Logger {
	return log.With(args...)
}
