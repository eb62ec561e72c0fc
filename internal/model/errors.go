package model

import "errors"

var (
	// ErrMalformedFrame is returned when an inbound frame is not a parseable envelope.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnknownEnvelopeKind is returned when an envelope carries an unrecognized type tag.
	ErrUnknownEnvelopeKind = errors.New("unknown envelope kind")

	// ErrEmptyMessage is returned when a user message has no content.
	ErrEmptyMessage = errors.New("message content is required")

	// ErrConnectionNotFound is returned when a connection handle is not registered.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrUserNotConnected is returned when no live connection exists for an identity.
	ErrUserNotConnected = errors.New("user not connected")

	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned when a chat session does not exist.
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrEmailTaken is returned when registering with an already-used email.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrUsernameTaken is returned when registering with an already-used username.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrWeakPassword is returned when a password fails the strength policy.
	ErrWeakPassword = errors.New("password must be at least 8 characters and contain upper, lower and digit")

	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned when a JWT is missing, expired or malformed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInactiveUser is returned when an account is deactivated.
	ErrInactiveUser = errors.New("account is deactivated")
)
