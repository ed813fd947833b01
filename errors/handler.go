package errors

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vcrobe/morph/console"
)

var (
	handlerMu sync.RWMutex
	handler   Handler = &LogHandler{}
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		h = &LogHandler{}
	}
	handler = h
}

// CurrentHandler returns the global error handler.
func CurrentHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *Error) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	CurrentHandler().HandleError(err)
}

// LogHandler writes reported errors to a structured logger.
type LogHandler struct {
	// Logger defaults to the console package logger.
	Logger *slog.Logger
}

// HandleError logs err at error level.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if err.Component != "" {
		attrs = append(attrs, "component", err.Component)
	}
	if h.Logger == nil {
		console.Error("morph error", attrs...)
		return
	}
	h.Logger.Error("morph error", attrs...)
}
