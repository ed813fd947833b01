// Package errors provides structured error reporting for failures that have
// no caller to return to, such as a template function failing inside a
// scheduled frame.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindTemplate indicates a template function returned an error.
	KindTemplate
	// KindMount indicates a render target could not be resolved.
	KindMount
	// KindParse indicates input could not be parsed.
	KindParse
	// KindStore indicates store data could not be loaded or applied.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindMount:
		return "mount"
	case KindParse:
		return "parse"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is a structured error with the failing operation and its category.
type Error struct {
	// Op is the operation that failed (e.g., "runtime.Controller.frame").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// Component names the render controller involved, if any.
	Component string
	// Timestamp is when the error was reported.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s [%s] component=%s: %v", e.Op, e.Kind, e.Component, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Handler receives reported errors.
type Handler interface {
	HandleError(err *Error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(err *Error)

// HandleError calls f(err).
func (f HandlerFunc) HandleError(err *Error) {
	f(err)
}
