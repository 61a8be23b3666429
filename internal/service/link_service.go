// File: internal/service/link_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/domain/repository"
	"github.com/balancy/login-via-telegram/internal/events/kafka"
	"github.com/balancy/login-via-telegram/internal/utils/random"
)

const telegramProviderName = "telegram"

// PasswordHasher hashes the throwaway credential generated for accounts
// created through the Telegram login path.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// LinkService resolves a Telegram identity to a local account, creating
// the account and the identity link when needed. The whole resolution
// runs in one transaction so an account is never left without its
// identity.
type LinkService struct {
	logger         *zap.Logger
	txManager      repository.TransactionManager
	userRepo       repository.UserRepository
	identityRepo   repository.TelegramIdentityRepository
	hasher         PasswordHasher
	producer       *kafka.Producer
	passwordLength int
}

// NewLinkService creates a new LinkService. producer may be nil, in
// which case no events are published.
func NewLinkService(
	logger *zap.Logger,
	txManager repository.TransactionManager,
	userRepo repository.UserRepository,
	identityRepo repository.TelegramIdentityRepository,
	hasher PasswordHasher,
	producer *kafka.Producer,
	passwordLength int,
) *LinkService {
	return &LinkService{
		logger:         logger,
		txManager:      txManager,
		userRepo:       userRepo,
		identityRepo:   identityRepo,
		hasher:         hasher,
		producer:       producer,
		passwordLength: passwordLength,
	}
}

// Link finds or creates the local account for a Telegram identity:
//  1. an identity already exists for telegramID: its account is returned
//     and the name fields are ignored, they are not re-synced;
//  2. an account exists with the username: it is rebound as-is, trusting
//     the caller (the backend only accepts verified bot submissions);
//  3. otherwise a new account is created with a random credential.
//
// On paths 2 and 3 the identity link is created inside the same
// transaction. Concurrent first-time links race on the unique
// constraints; a loser on telegram_id looks up the winner's account, a
// loser on username retries and lands on the rebind path.
func (s *LinkService) Link(ctx context.Context, telegramID, username, firstName, lastName string) (*models.User, error) {
	user, isNewUser, isNewLink, err := s.linkOnce(ctx, telegramID, username, firstName, lastName)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrTelegramIDExists):
			// A concurrent link for the same telegram_id won; its account
			// is the answer.
			s.logger.Info("Lost link race, looking up winner", zap.String("telegram_id", telegramID))
			identity, lookupErr := s.identityRepo.FindByTelegramID(ctx, telegramID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return s.userRepo.FindByID(ctx, identity.UserID)
		case errors.Is(err, domainErrors.ErrDuplicateValue):
			// A concurrent request created the username first. The retry
			// finds that account and rebinds it.
			s.logger.Info("Lost username race, retrying link", zap.String("username", username))
			user, isNewUser, isNewLink, err = s.linkOnce(ctx, telegramID, username, firstName, lastName)
			if err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	if isNewLink {
		s.publishEvents(user, telegramID, isNewUser)
	}
	return user, nil
}

func (s *LinkService) linkOnce(ctx context.Context, telegramID, username, firstName, lastName string) (*models.User, bool, bool, error) {
	var user *models.User
	var isNewUser, isNewLink bool

	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		identity, err := s.identityRepo.FindByTelegramID(txCtx, telegramID)
		if err == nil {
			s.logger.Info("Existing telegram identity found", zap.String("telegram_id", telegramID))
			user, err = s.userRepo.FindByID(txCtx, identity.UserID)
			return err
		}
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return err
		}

		user, err = s.userRepo.FindByUsername(txCtx, username)
		switch {
		case err == nil:
			s.logger.Info("Rebinding telegram identity to existing user", zap.String("username", username))
		case errors.Is(err, domainErrors.ErrUserNotFound):
			user, err = s.createUser(txCtx, username, firstName, lastName)
			if err != nil {
				return err
			}
			isNewUser = true
		default:
			return err
		}

		now := time.Now().UTC()
		newIdentity := &models.TelegramIdentity{
			ID:               uuid.New(),
			UserID:           user.ID,
			TelegramID:       telegramID,
			TelegramUsername: username,
			CreatedAt:        now,
		}
		if err := s.identityRepo.Create(txCtx, newIdentity); err != nil {
			return err
		}
		isNewLink = true
		s.logger.Info("Telegram identity linked",
			zap.String("telegram_id", telegramID),
			zap.String("user_id", user.ID.String()),
		)
		return nil
	})

	return user, isNewUser, isNewLink, err
}

func (s *LinkService) createUser(ctx context.Context, username, firstName, lastName string) (*models.User, error) {
	password, err := random.Password(s.passwordLength)
	if err != nil {
		return nil, err
	}
	passwordHash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("New user created for telegram login",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
	)
	return user, nil
}

// publishEvents emits registration/link events after a successful
// commit. Failures are logged and swallowed, publishing is not part of
// the login contract.
func (s *LinkService) publishEvents(user *models.User, telegramID string, isNewUser bool) {
	if s.producer == nil {
		return
	}

	now := time.Now().UTC()
	if isNewUser {
		payload := models.UserRegisteredPayload{
			UserID:                user.ID.String(),
			Username:              user.Username,
			RegistrationMethod:    telegramProviderName,
			RegistrationTimestamp: now,
		}
		if err := s.producer.Publish(models.AuthUserRegisteredV1, user.ID.String(), payload); err != nil {
			s.logger.Error("Failed to publish user registered event", zap.Error(err))
		}
	}

	payload := models.AccountLinkedPayload{
		UserID:     user.ID.String(),
		Provider:   telegramProviderName,
		TelegramID: telegramID,
		LinkedAt:   now,
	}
	if err := s.producer.Publish(models.AuthAccountLinkedV1, user.ID.String(), payload); err != nil {
		s.logger.Error("Failed to publish account linked event", zap.Error(err))
	}
}
