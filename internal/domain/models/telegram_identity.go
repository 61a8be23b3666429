// File: internal/domain/models/telegram_identity.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// TelegramIdentity is the exclusive one-to-one link between a Telegram
// account and a local user. TelegramUsername is a snapshot taken at
// linking time, it is not re-synced afterwards.
type TelegramIdentity struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	TelegramID       string    `json:"telegram_id" db:"telegram_id"`
	TelegramUsername string    `json:"telegram_username" db:"telegram_username"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
