// Package log provides structured logging for color-tracker.
// It wraps slog and always writes to stderr: stdout carries the MCP protocol
// and the JSON-lines tracking output.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Environment variables read by Init.
const (
	EnvLevel = "COLOR_TRACKER_LOG_LEVEL"
	EnvMode  = "COLOR_TRACKER_ENV"
)

var (
	logger *slog.Logger
	once   sync.Once
	mu     sync.RWMutex
)

// ParseLevel maps "debug", "warn", "error" to slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the global logger with the specified level.
// An empty level falls back to COLOR_TRACKER_LOG_LEVEL. Only the first call
// has any effect.
func Init(level string) {
	once.Do(func() {
		if level == "" {
			level = os.Getenv(EnvLevel)
		}
		set(New(os.Stderr, level, os.Getenv(EnvMode) == "production"))
	})
}

// New builds a logger writing to w. JSON output is used in production,
// text otherwise.
func New(w io.Writer, level string, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetLogger replaces the global logger, mostly for tests.
func SetLogger(l *slog.Logger) {
	once.Do(func() {})
	set(l)
}

func set(l *slog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// L returns the global logger instance.
func L() *slog.Logger {
	Init("")
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
