package domain

import (
	"errors"
	"fmt"
)

// Error categories. Specific errors wrap one of these so the transport layer
// can map them with errors.Is without knowing every variant.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

var (
	ErrEventNotFound    = fmt.Errorf("event %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrFeedbackNotFound = fmt.Errorf("feedback %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("session %w", ErrNotFound)

	ErrAlreadyLoggedIn  = fmt.Errorf("already logged in: %w", ErrConflict)
	ErrEventTitleExists = fmt.Errorf("event title already exists: %w", ErrConflict)
	ErrUserExists       = fmt.Errorf("user already exists: %w", ErrConflict)
)

// Credential errors.
var (
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrExpiredCredential  = errors.New("credential expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("access forbidden")
)
