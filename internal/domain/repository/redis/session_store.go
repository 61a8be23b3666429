// File: internal/domain/repository/redis/session_store.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/domain/repository"
)

// SessionStore keeps browser sessions in Redis, keyed by session ID with
// a TTL derived from the session's expiry.
type SessionStore struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewSessionStore creates a new SessionStore. ttl is the fallback when a
// session carries no explicit expiry.
func NewSessionStore(client *redis.Client, logger *zap.Logger, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("session:%s", id.String())
}

// Set stores the session.
func (s *SessionStore) Set(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		s.logger.Error("Failed to marshal session", zap.Error(err), zap.String("session_id", session.ID.String()))
		return err
	}

	ttl := s.ttl
	if !session.ExpiresAt.IsZero() {
		if expiresIn := time.Until(session.ExpiresAt); expiresIn > 0 {
			ttl = expiresIn
		}
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		s.logger.Error("Failed to store session", zap.Error(err), zap.String("session_id", session.ID.String()))
		return err
	}
	return nil
}

// GetByID retrieves a session by ID.
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domainErrors.ErrSessionNotFound
		}
		s.logger.Error("Failed to get session", zap.Error(err), zap.String("session_id", id.String()))
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Error("Failed to unmarshal session", zap.Error(err), zap.String("session_id", id.String()))
		return nil, err
	}
	return &session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		s.logger.Error("Failed to delete session", zap.Error(err), zap.String("session_id", id.String()))
		return err
	}
	return nil
}

var _ repository.SessionStore = (*SessionStore)(nil)
