package domain

import "errors"

// Domain errors - business rule violations.
// These errors are part of the domain language.
var (
	// Command errors
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
)
