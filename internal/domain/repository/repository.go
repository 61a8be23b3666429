// File: internal/domain/repository/repository.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/balancy/login-via-telegram/internal/domain/models"
)

// AuthTokenRepository persists short-lived login tokens. Claim and
// ConsumeClaimed must be atomic with respect to concurrent callers; the
// store's own compare-and-set is the source of truth, not an
// application-level check.
type AuthTokenRepository interface {
	Create(ctx context.Context, token *models.AuthToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuthToken, error)
	// Claim binds the token to a user iff it is unexpired and unclaimed.
	// Exactly one concurrent claim wins; losers get ErrTokenAlreadyClaimed.
	Claim(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	// ConsumeClaimed deletes the token and returns the claiming user ID.
	// Calling it twice on the same token returns ErrTokenNotFound the
	// second time.
	ConsumeClaimed(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	// DeleteExpiredUnclaimed removes abandoned tokens. Claimed tokens are
	// never swept, the consuming side may still be racing this job.
	DeleteExpiredUnclaimed(ctx context.Context) (int64, error)
}

// UserRepository persists local accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// TelegramIdentityRepository persists the one-to-one link between a
// Telegram account and a local user. Uniqueness of both telegram_id and
// user_id is enforced by the store.
type TelegramIdentityRepository interface {
	Create(ctx context.Context, identity *models.TelegramIdentity) error
	FindByTelegramID(ctx context.Context, telegramID string) (*models.TelegramIdentity, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.TelegramIdentity, error)
}

// SessionStore keeps established browser sessions.
type SessionStore interface {
	Set(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionManager runs fn inside a storage transaction. Nested calls
// reuse the transaction already carried by the context.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
