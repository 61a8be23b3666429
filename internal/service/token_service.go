// File: internal/service/token_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/domain/repository"
	"github.com/balancy/login-via-telegram/internal/utils/metrics"
)

// TokenService owns the auth token lifecycle: issue, validate, claim,
// consume and sweep. All atomicity lives in the repository; this layer
// only sequences the calls and applies the lifetime policy.
type TokenService struct {
	logger    *zap.Logger
	tokenRepo repository.AuthTokenRepository
	tokenTTL  time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(logger *zap.Logger, tokenRepo repository.AuthTokenRepository, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		logger:    logger,
		tokenRepo: tokenRepo,
		tokenTTL:  tokenTTL,
	}
}

// Issue creates and persists a fresh unclaimed token.
func (s *TokenService) Issue(ctx context.Context) (*models.AuthToken, error) {
	now := time.Now().UTC()
	token := &models.AuthToken{
		ID:        uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		s.logger.Error("Failed to issue auth token", zap.Error(err))
		return nil, err
	}

	metrics.TokensIssuedTotal.Inc()
	s.logger.Info("Auth token issued", zap.String("token_id", token.ID.String()))
	return token, nil
}

// Validate returns the token if it exists and is unexpired. It never
// mutates anything.
func (s *TokenService) Validate(ctx context.Context, id uuid.UUID) (*models.AuthToken, error) {
	token, err := s.tokenRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !token.IsValid() {
		return nil, domainErrors.ErrTokenExpired
	}
	return token, nil
}

// Claim binds the token to the user. Exactly one concurrent claim wins;
// a second claim observes ErrTokenAlreadyClaimed.
func (s *TokenService) Claim(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	if err := s.tokenRepo.Claim(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("Auth token claimed",
		zap.String("token_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// ConsumeIfClaimed exchanges a claimed token for its user exactly once.
// The token is gone afterwards.
func (s *TokenService) ConsumeIfClaimed(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	userID, err := s.tokenRepo.ConsumeClaimed(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("Auth token consumed",
		zap.String("token_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return userID, nil
}

// SweepExpiredUnclaimed removes abandoned tokens. Safe to run repeatedly
// and concurrently; claimed tokens are never touched.
func (s *TokenService) SweepExpiredUnclaimed(ctx context.Context) (int64, error) {
	count, err := s.tokenRepo.DeleteExpiredUnclaimed(ctx)
	if err != nil {
		s.logger.Error("Failed to sweep expired tokens", zap.Error(err))
		return 0, err
	}
	if count > 0 {
		metrics.TokensSweptTotal.Add(float64(count))
		s.logger.Info("Swept expired unclaimed tokens", zap.Int64("count", count))
	}
	return count, nil
}
