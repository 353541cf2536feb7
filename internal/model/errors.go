package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Session errors
	ErrSessionActive   = errors.New("a session is already active")
	ErrNoSession       = errors.New("no active session")
	ErrInvalidPin      = errors.New("pin must be a non-empty numeric code")
	ErrInvalidState    = errors.New("operation not valid in the current session state")
	ErrUnknownOption   = errors.New("option is not part of the current question")
	ErrAlreadyAnswered = errors.New("an answer was already submitted for this question")
	ErrSelectionLocked = errors.New("time is up for this question")

	// Identity errors
	ErrNoIdentity      = errors.New("no identity is active")
	ErrInvalidNickname = errors.New("nickname must be between 1 and 32 characters")

	// Channel errors
	ErrNotConnected   = errors.New("channel is not connected")
	ErrConnectionLost = errors.New("connection to the server was lost")

	// Storage errors
	ErrKeyNotFound = errors.New("key not found")
)

// AuthErrorKind classifies authentication failures
type AuthErrorKind string

const (
	AuthInvalidCredentials AuthErrorKind = "invalid-credentials"
	AuthUnverified         AuthErrorKind = "unverified"
	AuthNetwork            AuthErrorKind = "network"
	AuthUnknown            AuthErrorKind = "unknown"
)

// AuthError is returned when logging in fails. Message is safe to show to the user.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ChannelError wraps a transport failure of the event channel.
// It is never fatal; callers decide whether to connect again.
type ChannelError struct {
	Op    string // connect, emit, read, encode
	Event string // event name for emit failures
	Err   error
}

func (e *ChannelError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("channel %s %q: %v", e.Op, e.Event, e.Err)
	}
	return fmt.Sprintf("channel %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// SessionError carries a game-error broadcast from the server
type SessionError struct {
	Pin     string
	Message string
}

func (e *SessionError) Error() string {
	return e.Message
}
