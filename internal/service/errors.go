package service

import (
	"errors"
	"fmt"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
)

// Kind classifies service errors so transports map them without matching
// on message text.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindPreconditionFailed
	KindInvalidTransition
	KindConflict
	KindDuplicate
)

// Error is the typed error returned by every service operation.
// Conflicts is populated only for KindConflict.
type Error struct {
	Kind      Kind
	Message   string
	Conflicts []booking.Conflict
	err       error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As
func (e *Error) Unwrap() error { return e.err }

// KindOf returns the Kind of err, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// ConflictsOf returns the conflict list attached to err, if any
func ConflictsOf(err error) []booking.Conflict {
	var se *Error
	if errors.As(err, &se) {
		return se.Conflicts
	}
	return nil
}

// E builds a service error of the given kind
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef builds a service error with a formatted message
func Ef(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a service error wrapping a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// ConflictError builds a KindConflict error carrying the blocking bookings
func ConflictError(message string, conflicts []booking.Conflict) *Error {
	return &Error{Kind: KindConflict, Message: message, Conflicts: conflicts}
}

func notFound(what string) *Error {
	return Ef(KindNotFound, "%s not found", what)
}

func internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}
