// File: internal/domain/models/auth_token.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is a short-lived capability linking a login attempt to a
// future authenticated session. It is created by the login page, claimed
// once by a successful Telegram submission and deleted when the browser
// session is established (or swept if it was never claimed).
type AuthToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	ClaimedBy *uuid.UUID `json:"claimed_by,omitempty" db:"claimed_by"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty" db:"claimed_at"`
}

// IsValid reports whether the token is still within its lifetime.
func (t *AuthToken) IsValid() bool {
	return time.Now().Before(t.ExpiresAt)
}

// IsClaimed reports whether the token has been bound to an account.
func (t *AuthToken) IsClaimed() bool {
	return t.ClaimedBy != nil
}
