// Package platform connects marker bindings to a native map view.
//
// Go talks to native code over named channels: a [MethodChannel] for calls
// in either direction and an [EventChannel] for streams from native. Payloads
// are JSON. A [NativeBridge] installed by the host embedding carries the
// bytes.
//
// On top of the channels, [AnnotationRegistry] implements [mapkit.Map] and
// [mapkit.Annotation] so that a [marker.Binding] can drive a native map:
//
//	b := marker.New(platform.NewAnnotation)
//	b.Update(platform.GetAnnotationRegistry().Map("main"), spec)
package platform

import (
	"encoding/json"
	"errors"
)

// MessageCodec encodes and decodes messages for platform channel communication.
type MessageCodec interface {
	// Encode converts a Go value to bytes for transmission to native code.
	Encode(value any) ([]byte, error)

	// Decode converts bytes received from native code to a Go value.
	Decode(data []byte) (any, error)
}

// JsonCodec implements MessageCodec using JSON encoding.
type JsonCodec struct{}

// Encode serializes the value to JSON bytes.
func (c JsonCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON bytes to a Go value. Empty input decodes to nil.
func (c JsonCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DefaultCodec is the codec used by platform channels.
var DefaultCodec MessageCodec = JsonCodec{}

// Standard errors for platform operations.
var (
	// ErrChannelNotFound indicates the requested platform channel does not exist.
	ErrChannelNotFound = errors.New("platform channel not found")

	// ErrChannelNotRegistered is returned when an event arrives for an
	// unregistered event channel.
	ErrChannelNotRegistered = errors.New("event channel not registered")

	// ErrMethodNotFound indicates the method is not implemented on the receiving side.
	ErrMethodNotFound = errors.New("method not implemented")

	// ErrInvalidArguments indicates the arguments passed to the method were invalid.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrPlatformUnavailable indicates no native bridge is installed.
	ErrPlatformUnavailable = errors.New("platform unavailable")

	// ErrDisposed is returned when operating on a disposed annotation.
	ErrDisposed = errors.New("platform: annotation disposed")

	// ErrUnknownAnnotation is returned when native refers to an annotation
	// Go does not know, typically one that was already disposed.
	ErrUnknownAnnotation = errors.New("platform: unknown annotation")
)

// ChannelError represents an error returned from native code.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NewChannelError creates a new ChannelError with the given code and message.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}
