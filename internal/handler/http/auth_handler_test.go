// File: internal/handler/http/auth_handler_test.go
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/balancy/login-via-telegram/internal/config"
	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/service"
)

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, token *models.AuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AuthToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthToken), args.Error(1)
}

func (m *mockTokenRepo) Claim(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockTokenRepo) ConsumeClaimed(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockTokenRepo) DeleteExpiredUnclaimed(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockIdentityRepo struct {
	mock.Mock
}

func (m *mockIdentityRepo) Create(ctx context.Context, identity *models.TelegramIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepo) FindByTelegramID(ctx context.Context, telegramID string) (*models.TelegramIdentity, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TelegramIdentity), args.Error(1)
}

func (m *mockIdentityRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.TelegramIdentity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TelegramIdentity), args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Set(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

type handlerFixture struct {
	router       *gin.Engine
	tokenRepo    *mockTokenRepo
	userRepo     *mockUserRepo
	identityRepo *mockIdentityRepo
	sessions     *mockSessionStore
	cfg          *config.Config
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	tokenRepo := new(mockTokenRepo)
	userRepo := new(mockUserRepo)
	identityRepo := new(mockIdentityRepo)
	sessions := new(mockSessionStore)

	cfg := &config.Config{}
	cfg.Telegram.BotLink = "https://t.me/test_bot"
	cfg.Session.TTL = 24 * time.Hour
	cfg.Session.CookieName = "session_id"

	tokens := service.NewTokenService(logger, tokenRepo, 10*time.Minute)
	links := service.NewLinkService(logger, passthroughTxManager{}, userRepo, identityRepo, plainHasher{}, nil, 12)
	auth := service.NewAuthService(logger, tokens, links, sessions, cfg.Session.TTL)

	return &handlerFixture{
		router:       SetupRouter(auth, tokens, cfg, logger),
		tokenRepo:    tokenRepo,
		userRepo:     userRepo,
		identityRepo: identityRepo,
		sessions:     sessions,
		cfg:          cfg,
	}
}

func TestLoginEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.tokenRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, "https://t.me/test_bot?start="+resp.Token, resp.BotLink)
}

func TestTelegramAuthEndpoint(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := httptest.NewRecorder()
		body := strings.NewReader(`{"token": "` + uuid.NewString() + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/telegram-auth", body)
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Missing required fields")
		// Nothing reaches the store when validation fails.
		f.tokenRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newHandlerFixture(t)
		tokenID := uuid.New()
		f.tokenRepo.On("GetByID", mock.Anything, tokenID).Return(nil, domainErrors.ErrTokenNotFound).Once()

		w := httptest.NewRecorder()
		body := strings.NewReader(`{"token":"` + tokenID.String() + `","telegram_id":"123","username":"alice"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/telegram-auth", body)
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid or expired token")
	})

	t.Run("success", func(t *testing.T) {
		f := newHandlerFixture(t)
		now := time.Now().UTC()
		tokenID := uuid.New()
		userID := uuid.New()
		token := &models.AuthToken{ID: tokenID, CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute)}
		identity := &models.TelegramIdentity{ID: uuid.New(), UserID: userID, TelegramID: "123"}
		user := &models.User{ID: userID, Username: "alice"}

		f.tokenRepo.On("GetByID", mock.Anything, tokenID).Return(token, nil).Once()
		f.identityRepo.On("FindByTelegramID", mock.Anything, "123").Return(identity, nil).Once()
		f.userRepo.On("FindByID", mock.Anything, userID).Return(user, nil).Once()
		f.tokenRepo.On("Claim", mock.Anything, tokenID, userID).Return(nil).Once()

		w := httptest.NewRecorder()
		body := strings.NewReader(`{"token":"` + tokenID.String() + `","telegram_id":"123","username":"alice"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/telegram-auth", body)
		req.Header.Set("Content-Type", "application/json")
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "User authenticated successfully!")
		assert.Contains(t, w.Body.String(), "alice")
		f.tokenRepo.AssertExpectations(t)
	})
}

func TestCheckAuthStatusEndpoint(t *testing.T) {
	t.Run("missing token answers false", func(t *testing.T) {
		f := newHandlerFixture(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/check-auth-status", nil)
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"is_authenticated": false}`, w.Body.String())
	})

	t.Run("unclaimed token answers false", func(t *testing.T) {
		f := newHandlerFixture(t)
		tokenID := uuid.New()
		f.tokenRepo.On("ConsumeClaimed", mock.Anything, tokenID).Return(uuid.Nil, domainErrors.ErrTokenNotClaimed).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/check-auth-status?token="+tokenID.String(), nil)
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"is_authenticated": false}`, w.Body.String())
	})

	t.Run("claimed token sets session cookie", func(t *testing.T) {
		f := newHandlerFixture(t)
		tokenID := uuid.New()
		userID := uuid.New()

		f.tokenRepo.On("ConsumeClaimed", mock.Anything, tokenID).Return(userID, nil).Once()
		f.sessions.On("Set", mock.Anything, mock.AnythingOfType("*models.Session")).Return(nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/check-auth-status?token="+tokenID.String(), nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
		f.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"is_authenticated": true}`, w.Body.String())

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "session_id", cookies[0].Name)
		_, err := uuid.Parse(cookies[0].Value)
		assert.NoError(t, err)
		assert.True(t, cookies[0].HttpOnly)
	})
}

func TestHealthEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
