// File: internal/domain/models/events.go
package models

import "time"

// Event type identifiers for CloudEvents published by the bridge.
const (
	AuthUserRegisteredV1 = "auth.user.registered.v1"
	AuthAccountLinkedV1  = "auth.account.linked.v1"
)

// UserRegisteredPayload is published when the link path creates a new
// local account for a first-time Telegram login.
type UserRegisteredPayload struct {
	UserID                string    `json:"user_id"`
	Username              string    `json:"username"`
	RegistrationMethod    string    `json:"registration_method"`
	RegistrationTimestamp time.Time `json:"registration_timestamp"`
}

// AccountLinkedPayload is published when a Telegram identity is bound to
// a local account, whether the account is new or rebound by username.
type AccountLinkedPayload struct {
	UserID     string    `json:"user_id"`
	Provider   string    `json:"provider"`
	TelegramID string    `json:"telegram_id"`
	LinkedAt   time.Time `json:"linked_at"`
}
