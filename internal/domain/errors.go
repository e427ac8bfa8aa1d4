package domain

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by a service wraps exactly one of these so the
// delivery layer can map it to a status code with errors.Is.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInfrastructure = errors.New("infrastructure failure")
)

// reasonError is a specific failure reason that belongs to a kind.
type reasonError struct {
	kind error
	msg  string
}

func (e *reasonError) Error() string { return e.msg }
func (e *reasonError) Unwrap() error { return e.kind }

func reason(kind error, msg string) error {
	return &reasonError{kind: kind, msg: msg}
}

// Auth failures.
var (
	ErrMissingToken = reason(ErrUnauthorized, "missing token")
	ErrTokenRevoked = reason(ErrUnauthorized, "token has been revoked")
	ErrInvalidToken = reason(ErrUnauthorized, "invalid or expired token")
)

// Lifecycle conflicts.
var (
	ErrEventFull        = reason(ErrConflict, "event is full")
	ErrAlreadyJoined    = reason(ErrConflict, "already joined this event")
	ErrSelfJoin         = reason(ErrConflict, "cannot join your own event")
	ErrEventConcluded   = reason(ErrConflict, "event is already concluded")
	ErrNotParticipant   = reason(ErrConflict, "not a participant of this event")
	ErrOwnerCannotLeave = reason(ErrConflict, "the event creator cannot leave the event")
)

// Feedback and rating conflicts.
var (
	ErrSelfFeedback      = reason(ErrConflict, "cannot give feedback to yourself")
	ErrSelfRating        = reason(ErrConflict, "cannot rate yourself")
	ErrNotConcluded      = reason(ErrConflict, "event has not been concluded yet")
	ErrDuplicateFeedback = reason(ErrConflict, "feedback already submitted for this user")
	ErrDuplicateRating   = reason(ErrConflict, "user already rated for this event")
	ErrUnknownAttribute  = reason(ErrInvalidInput, "unknown feedback attribute")
)

// Lookup failures.
var (
	ErrEventNotFound       = reason(ErrNotFound, "event not found")
	ErrParticipantNotFound = reason(ErrNotFound, "participant not found")
)

// ValidationError reports malformed input with one message per offending field.
type ValidationError struct {
	Fields []string
}

// NewValidationError returns nil when fields is empty so callers can write
// `if err := NewValidationError(errs); err != nil`.
func NewValidationError(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
