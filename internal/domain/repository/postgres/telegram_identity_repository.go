// File: internal/domain/repository/postgres/telegram_identity_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/domain/repository"
)

// TelegramIdentityRepositoryPostgres implements
// repository.TelegramIdentityRepository for PostgreSQL. Uniqueness of
// telegram_id and user_id is carried by table constraints; a violated
// insert surfaces as ErrTelegramIDExists or ErrDuplicateValue so the
// caller can fall back to a lookup of the winning row.
type TelegramIdentityRepositoryPostgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTelegramIdentityRepositoryPostgres creates a new instance.
func NewTelegramIdentityRepositoryPostgres(pool *pgxpool.Pool, logger *zap.Logger) *TelegramIdentityRepositoryPostgres {
	return &TelegramIdentityRepositoryPostgres{pool: pool, logger: logger}
}

// Create persists a new identity link.
func (r *TelegramIdentityRepositoryPostgres) Create(ctx context.Context, identity *models.TelegramIdentity) error {
	query := `
		INSERT INTO telegram_identities (id, user_id, telegram_id, telegram_username, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		identity.ID, identity.UserID, identity.TelegramID, identity.TelegramUsername, identity.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				if strings.Contains(pgErr.ConstraintName, "telegram_id") {
					return fmt.Errorf("identity for telegram id '%s' already exists: %w",
						identity.TelegramID, domainErrors.ErrTelegramIDExists)
				}
				return fmt.Errorf("failed to create telegram identity due to unique constraint %s: %w",
					pgErr.ConstraintName, domainErrors.ErrDuplicateValue)
			}
			if pgErr.Code == "23503" {
				return fmt.Errorf("user ID '%s' not found for telegram identity: %w",
					identity.UserID, domainErrors.ErrUserNotFound)
			}
		}
		r.logger.Error("Failed to create telegram identity", zap.Error(err), zap.String("telegram_id", identity.TelegramID))
		return fmt.Errorf("failed to create telegram identity: %w", err)
	}
	return nil
}

// FindByTelegramID retrieves the identity linked to a Telegram account.
func (r *TelegramIdentityRepositoryPostgres) FindByTelegramID(ctx context.Context, telegramID string) (*models.TelegramIdentity, error) {
	query := `
		SELECT id, user_id, telegram_id, telegram_username, created_at
		FROM telegram_identities
		WHERE telegram_id = $1
	`
	return r.scanOne(ctx, query, telegramID)
}

// FindByUserID retrieves the identity owned by a local user.
func (r *TelegramIdentityRepositoryPostgres) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.TelegramIdentity, error) {
	query := `
		SELECT id, user_id, telegram_id, telegram_username, created_at
		FROM telegram_identities
		WHERE user_id = $1
	`
	return r.scanOne(ctx, query, userID)
}

func (r *TelegramIdentityRepositoryPostgres) scanOne(ctx context.Context, query string, arg any) (*models.TelegramIdentity, error) {
	identity := &models.TelegramIdentity{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&identity.ID, &identity.UserID, &identity.TelegramID, &identity.TelegramUsername, &identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find telegram identity: %w", err)
	}
	return identity, nil
}

var _ repository.TelegramIdentityRepository = (*TelegramIdentityRepositoryPostgres)(nil)
