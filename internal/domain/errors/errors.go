// File: internal/domain/errors/errors.go
package errors

import "errors"

var (
	// Generic errors.
	ErrInternal       = errors.New("internal server error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicateValue = errors.New("duplicate value")

	// Auth token errors.
	ErrTokenNotFound       = errors.New("auth token not found")
	ErrTokenExpired        = errors.New("auth token expired")
	ErrTokenAlreadyClaimed = errors.New("auth token already claimed")
	ErrTokenNotClaimed     = errors.New("auth token not claimed")

	// User and identity errors.
	ErrUserNotFound     = errors.New("user not found")
	ErrTelegramIDExists = errors.New("telegram id already linked to another account")

	// Session errors.
	ErrSessionNotFound = errors.New("session not found")
)

// IsNotFound reports whether err is one of the "not found" kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsTokenRejection reports whether err is an expected token outcome that
// the HTTP boundary translates to a 400 without leaking detail. A losing
// concurrent claim lands here too: it is a resolved race, not a fault.
func IsTokenRejection(err error) bool {
	return errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenAlreadyClaimed)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateValue) ||
		errors.Is(err, ErrTelegramIDExists)
}
