// Package errors provides structured error reporting for marker bindings and
// the native map bridge.
//
// Most failures in a binding are not returned to the host: a missing map is a
// quiescent state, and bridge failures must not break the host's update
// cycle. They are reported to a process-wide [Handler] instead.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a native bridge or method channel failure.
	KindPlatform
	// KindInvalidValue indicates a declarative value outside its domain,
	// such as an unrecognized visibility.
	KindInvalidValue
	// KindLifecycle indicates use of a binding or annotation outside its
	// lifetime (after disposal, before creation).
	KindLifecycle
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindInvalidValue:
		return "invalid_value"
	case KindLifecycle:
		return "lifecycle"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// MapError is a structured error raised while synchronizing an annotation.
type MapError struct {
	// Op is the operation that failed (e.g., "marker.Update").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the platform channel name, if applicable.
	Channel string
	// Annotation identifies the annotation involved, if any.
	Annotation string
	// Property is the annotation property or event name involved, if any.
	Property string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MapError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]", e.Op, e.Kind)
	if e.Channel != "" {
		fmt.Fprintf(&sb, " channel=%s", e.Channel)
	}
	if e.Annotation != "" {
		fmt.Fprintf(&sb, " annotation=%s", e.Annotation)
	}
	if e.Property != "" {
		fmt.Fprintf(&sb, " property=%s", e.Property)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

func (e *MapError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "platform.HandleMethodCall").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to decode data received from native code.
type ParseError struct {
	// Channel is the platform channel that received the data.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from channel %s: got %T", e.DataType, e.Channel, e.Got)
}

// Handler receives errors reported by bindings and the bridge.
type Handler interface {
	// HandleError is called when an error occurs.
	HandleError(err *MapError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
