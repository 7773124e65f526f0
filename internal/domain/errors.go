package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session cannot be located in storage.
var ErrSessionNotFound = errors.New("session not found")

// InvalidTransitionError indicates a command that is not legal in the
// session's current state.
type InvalidTransitionError struct {
	From      SessionState
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s while %s", e.Attempted, e.From)
}

// SessionTerminatedError indicates a mutating command arrived after the
// session reached a terminal state.
type SessionTerminatedError struct {
	State SessionState
}

func (e *SessionTerminatedError) Error() string {
	return fmt.Sprintf("session is %s and no longer accepts commands", e.State)
}

// SessionFullError indicates a join would exceed the active participant capacity.
type SessionFullError struct {
	MaxParticipants int
}

func (e *SessionFullError) Error() string {
	return fmt.Sprintf("session is full (max %d participants)", e.MaxParticipants)
}

// DuplicateParticipantError indicates a join by a user already on the roster.
type DuplicateParticipantError struct {
	UserID string
}

func (e *DuplicateParticipantError) Error() string {
	return fmt.Sprintf("participant %s already joined", e.UserID)
}

// ParticipantNotFoundError indicates a command referencing an unknown participant.
type ParticipantNotFoundError struct {
	UserID string
}

func (e *ParticipantNotFoundError) Error() string {
	return fmt.Sprintf("participant %s not found", e.UserID)
}

// ValidationError indicates a rejected field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// ActivityIndexOutOfRangeError is a defensive guard. Reaching it indicates a
// coordinator bug, not caller misuse.
type ActivityIndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *ActivityIndexOutOfRangeError) Error() string {
	return fmt.Sprintf("activity index %d out of range (0..%d)", e.Index, e.Len-1)
}
