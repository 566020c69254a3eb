package errors

import (
	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/rs/zerolog"
)

// LogHandler is a Handler that writes errors through zerolog.
type LogHandler struct {
	// Logger receives the entries. When nil, the package-wide logger from
	// [logging.Logger] is used.
	Logger *zerolog.Logger
	// Verbose enables stack traces in the output.
	Verbose bool
}

func (h *LogHandler) logger() zerolog.Logger {
	if h.Logger != nil {
		return *h.Logger
	}
	return logging.Component("errors")
}

// HandleError logs a MapError. Invalid values are warnings, everything
// else is an error.
func (h *LogHandler) HandleError(err *MapError) {
	if err == nil {
		return
	}
	l := h.logger()
	ev := l.Error()
	if err.Kind == KindInvalidValue {
		ev = l.Warn()
	}
	ev = ev.Str("op", err.Op).Str("kind", err.Kind.String()).Err(err.Err)
	if err.Channel != "" {
		ev = ev.Str("channel", err.Channel)
	}
	if err.Annotation != "" {
		ev = ev.Str("annotation", err.Annotation)
	}
	if err.Property != "" {
		ev = ev.Str("property", err.Property)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("map error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	l := h.logger()
	ev := l.Error().Str("op", err.Op).Interface("value", err.Value)
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("recovered panic")
}
