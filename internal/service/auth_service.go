// File: internal/service/auth_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/domain/repository"
	"github.com/balancy/login-via-telegram/internal/utils/device"
)

// AuthService orchestrates the two halves of the login handshake: the
// Telegram-side submission (validate, link, claim) and the browser-side
// poll (consume, establish session).
type AuthService struct {
	logger     *zap.Logger
	tokens     *TokenService
	links      *LinkService
	sessions   repository.SessionStore
	sessionTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	logger *zap.Logger,
	tokens *TokenService,
	links *LinkService,
	sessions repository.SessionStore,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		logger:     logger,
		tokens:     tokens,
		links:      links,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// TelegramAuth processes a bot submission: the token must be valid, the
// Telegram identity is resolved to an account and the token is claimed
// for it. A token that cannot be parsed as an ID is reported as not
// found so callers cannot probe the ID space.
func (s *AuthService) TelegramAuth(ctx context.Context, req models.TelegramAuthRequest) (*models.User, error) {
	tokenID, err := uuid.Parse(req.Token)
	if err != nil {
		return nil, domainErrors.ErrTokenNotFound
	}

	if _, err := s.tokens.Validate(ctx, tokenID); err != nil {
		s.logger.Info("Telegram auth rejected", zap.Error(err))
		return nil, err
	}

	user, err := s.links.Link(ctx, req.TelegramID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		s.logger.Error("Failed to link telegram account", zap.Error(err), zap.String("telegram_id", req.TelegramID))
		return nil, err
	}

	if err := s.tokens.Claim(ctx, tokenID, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("User authenticated via telegram",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return user, nil
}

// CheckAuthStatus is the polling half: it exchanges a claimed token for
// a fresh session exactly once. Any token error means "not yet"; the
// caller keeps polling or gives up, it is never a fault.
func (s *AuthService) CheckAuthStatus(ctx context.Context, tokenID uuid.UUID, ipAddress, userAgent string) (*models.Session, error) {
	userID, err := s.tokens.ConsumeIfClaimed(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	var deviceInfo json.RawMessage
	if userAgent != "" {
		if data, marshalErr := json.Marshal(device.FromUserAgent(userAgent)); marshalErr == nil {
			deviceInfo = data
		}
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:         uuid.New(),
		UserID:     userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	if err := s.sessions.Set(ctx, session); err != nil {
		s.logger.Error("Failed to store session", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	s.logger.Info("Browser session synchronized",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return session, nil
}
