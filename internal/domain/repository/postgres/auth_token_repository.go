// File: internal/domain/repository/postgres/auth_token_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/domain/repository"
)

// AuthTokenRepositoryPostgres implements repository.AuthTokenRepository
// for PostgreSQL. The claim and consume paths rely on single-statement
// compare-and-set updates so concurrent callers are serialized by the
// database, not by application checks.
type AuthTokenRepositoryPostgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewAuthTokenRepositoryPostgres creates a new instance.
func NewAuthTokenRepositoryPostgres(pool *pgxpool.Pool, logger *zap.Logger) *AuthTokenRepositoryPostgres {
	return &AuthTokenRepositoryPostgres{pool: pool, logger: logger}
}

// Create persists a freshly issued token.
func (r *AuthTokenRepositoryPostgres) Create(ctx context.Context, token *models.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, created_at, expires_at, claimed_by, claimed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		token.ID, token.CreatedAt, token.ExpiresAt, token.ClaimedBy, token.ClaimedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create auth token", zap.Error(err), zap.String("token_id", token.ID.String()))
		return fmt.Errorf("failed to create auth token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by its ID.
func (r *AuthTokenRepositoryPostgres) GetByID(ctx context.Context, id uuid.UUID) (*models.AuthToken, error) {
	query := `
		SELECT id, created_at, expires_at, claimed_by, claimed_at
		FROM auth_tokens
		WHERE id = $1
	`
	token := &models.AuthToken{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&token.ID, &token.CreatedAt, &token.ExpiresAt, &token.ClaimedBy, &token.ClaimedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get auth token by ID: %w", err)
	}
	return token, nil
}

// Claim binds the token to a user with a single compare-and-set update.
// When the update matches no row the token is re-read to report why:
// missing, already claimed or expired.
func (r *AuthTokenRepositoryPostgres) Claim(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `
		UPDATE auth_tokens
		SET claimed_by = $2, claimed_at = $3
		WHERE id = $1 AND claimed_by IS NULL AND expires_at > $3
	`
	q := querierFrom(ctx, r.pool)
	result, err := q.Exec(ctx, query, id, userID, time.Now())
	if err != nil {
		r.logger.Error("Failed to claim auth token", zap.Error(err), zap.String("token_id", id.String()))
		return fmt.Errorf("failed to claim auth token: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	token, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if token.IsClaimed() {
		return domainErrors.ErrTokenAlreadyClaimed
	}
	return domainErrors.ErrTokenExpired
}

// ConsumeClaimed atomically deletes the token and returns the user it was
// claimed by. The delete-and-return makes the exchange exactly-once: a
// second call finds no row and reports ErrTokenNotFound.
func (r *AuthTokenRepositoryPostgres) ConsumeClaimed(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	query := `
		DELETE FROM auth_tokens
		WHERE id = $1 AND claimed_by IS NOT NULL
		RETURNING claimed_by
	`
	q := querierFrom(ctx, r.pool)
	var userID uuid.UUID
	err := q.QueryRow(ctx, query, id).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to consume auth token", zap.Error(err), zap.String("token_id", id.String()))
		return uuid.Nil, fmt.Errorf("failed to consume auth token: %w", err)
	}

	// No claimed row; distinguish "never existed / already consumed"
	// from "exists but unclaimed".
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return uuid.Nil, getErr
	}
	return uuid.Nil, domainErrors.ErrTokenNotClaimed
}

// DeleteExpiredUnclaimed purges abandoned tokens. Claimed tokens are left
// alone even when expired: the polling side may still be consuming them.
func (r *AuthTokenRepositoryPostgres) DeleteExpiredUnclaimed(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM auth_tokens
		WHERE claimed_by IS NULL AND expires_at < $1
	`
	result, err := querierFrom(ctx, r.pool).Exec(ctx, query, time.Now())
	if err != nil {
		r.logger.Error("Failed to delete expired unclaimed tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to delete expired unclaimed tokens: %w", err)
	}
	return result.RowsAffected(), nil
}

var _ repository.AuthTokenRepository = (*AuthTokenRepositoryPostgres)(nil)
