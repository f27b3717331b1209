package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys used by the logger
type ContextKey string

const (
	// LoggerKey is the context key for the logger instance
	LoggerKey ContextKey = "logger"
)

// New creates a console logger writing to w at the given level.
// An empty level means "info".
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger(), nil
}

// NewWithWriter creates a JSON logger with a custom writer
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// Open creates a logger that writes to the console and, if logFile is set,
// appends JSON lines to that file. The returned close function releases the
// file and is never nil.
func Open(level string, console io.Writer, logFile string) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	consoleWriter := zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	if logFile == "" {
		return zerolog.New(consoleWriter).Level(lvl).With().Timestamp().Logger(), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), noop, fmt.Errorf("failed to open log file: %w", err)
	}

	multi := zerolog.MultiLevelWriter(consoleWriter, file)
	return zerolog.New(multi).Level(lvl).With().Timestamp().Logger(), file.Close, nil
}

// ParseLevel converts a level name into a zerolog.Level.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return zerolog.InfoLevel, nil
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from the context or returns a disabled
// logger
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}
