// File: internal/domain/repository/postgres/user_repository.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/domain/repository"
)

// UserRepositoryPostgres implements repository.UserRepository for PostgreSQL.
type UserRepositoryPostgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewUserRepositoryPostgres creates a new instance.
func NewUserRepositoryPostgres(pool *pgxpool.Pool, logger *zap.Logger) *UserRepositoryPostgres {
	return &UserRepositoryPostgres{pool: pool, logger: logger}
}

// Create persists a new user.
func (r *UserRepositoryPostgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, first_name, last_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := querierFrom(ctx, r.pool).Exec(ctx, query,
		user.ID, user.Username, user.FirstName, user.LastName,
		user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("username '%s' already taken: %w", user.Username, domainErrors.ErrDuplicateValue)
		}
		r.logger.Error("Failed to create user", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by ID.
func (r *UserRepositoryPostgres) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, username, first_name, last_name, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

// FindByUsername retrieves a user by its unique username.
func (r *UserRepositoryPostgres) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, first_name, last_name, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(ctx, query, username)
}

func (r *UserRepositoryPostgres) scanOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := querierFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

var _ repository.UserRepository = (*UserRepositoryPostgres)(nil)
