// Package console builds the structured loggers used across the module and
// keeps a package-level logger for code that has none injected.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(New(slog.LevelInfo))
}

// New creates a text logger on stderr so it never mixes with rendered
// output on stdout. The "error" key is standardized to "err".
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config string (debug, info, warn, error) to a level.
// The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return current.Load()
}

// SetLogger replaces the package logger. A nil logger restores the default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = New(slog.LevelInfo)
	}
	current.Store(l)
}

// Warn writes a warning to the package logger.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error writes an error message to the package logger.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Debug writes a debug message to the package logger.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}
