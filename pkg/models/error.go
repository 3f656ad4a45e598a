package models

import "errors"

type ErrorKind string

const (
	ErrorKindValidation         ErrorKind = "ValidationError"
	ErrorKindNotFound           ErrorKind = "NotFound"
	ErrorKindForbidden          ErrorKind = "Forbidden"
	ErrorKindInvalidState       ErrorKind = "InvalidState"
	ErrorKindDownstreamDegraded ErrorKind = "DownstreamDegraded"
)

// Error is the stable error surface of the tracking core. Callers receive the
// kind plus a human readable message, never internals.
type Error struct {
	Kind    ErrorKind
	Message string

	// ConflictingTripRef is set on duplicate-active-trip rejections so the
	// caller can resolve the conflict.
	ConflictingTripRef string
}

func (e *Error) Error() string {
	return e.Message
}

func NewValidationError(message string) *Error {
	return &Error{Kind: ErrorKindValidation, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: ErrorKindForbidden, Message: message}
}

func NewInvalidStateError(message string) *Error {
	return &Error{Kind: ErrorKindInvalidState, Message: message}
}

// KindOf extracts the error kind, defaulting to DownstreamDegraded for
// anything outside the taxonomy.
func KindOf(err error) ErrorKind {
	var domainError *Error
	if errors.As(err, &domainError) {
		return domainError.Kind
	}
	return ErrorKindDownstreamDegraded
}
