package domain

import (
	"errors"
	"net/http"
)

// ErrorKind is the closed taxonomy of pipeline failures. The kind decides the
// HTTP status and whether the user message is specific or generic.
type ErrorKind string

const (
	// Client-input errors, detected before any network call.
	ErrInvalidFormat       ErrorKind = "invalid_format"
	ErrUnsupportedHost     ErrorKind = "unsupported_host"
	ErrInvalidPlatformPath ErrorKind = "invalid_platform_path"

	// Domain errors: the user can fix them by picking a different link.
	ErrUpstreamUnavailable      ErrorKind = "upstream_unavailable"
	ErrNoVideoFound             ErrorKind = "no_video_found"
	ErrCapabilityNotImplemented ErrorKind = "capability_not_implemented"

	// Server-side failures, not user-actionable.
	ErrTranscodeFailure ErrorKind = "transcode_failure"
	ErrInternal         ErrorKind = "internal"
)

// HTTPStatus maps a kind to the response status used when the response has
// not started yet.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrTranscodeFailure, ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error is a taxonomy entry with a user-facing message and an optional
// wrapped cause. The cause is for logs only and never reaches the client.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a taxonomy error without a cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError attaches an upstream cause to a taxonomy error.
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from err, defaulting to ErrInternal for
// anything that escaped classification.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrInternal
}

const genericServerMessage = "Something went wrong on our side. Please try again."

// UserMessage returns the message safe to put in the JSON error body. Raw
// causes of 500-class errors stay server-side.
func UserMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		if de.Kind == ErrInternal {
			return genericServerMessage
		}
		return de.Message
	}
	return genericServerMessage
}
