// File: internal/handler/http/auth_handler.go
package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/balancy/login-via-telegram/internal/config"
	domainErrors "github.com/balancy/login-via-telegram/internal/domain/errors"
	"github.com/balancy/login-via-telegram/internal/domain/models"
	"github.com/balancy/login-via-telegram/internal/service"
	"github.com/balancy/login-via-telegram/internal/utils/metrics"
)

// AuthHandler exposes the login handshake over HTTP.
type AuthHandler struct {
	logger       *zap.Logger
	authService  *service.AuthService
	tokenService *service.TokenService
	cfg          *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	logger *zap.Logger,
	authService *service.AuthService,
	tokenService *service.TokenService,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		logger:       logger.Named("auth_handler"),
		authService:  authService,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

// Login issues a fresh token for the login page together with the bot
// deep link that carries it.
// GET /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	token, err := h.tokenService.Issue(c.Request.Context())
	if err != nil {
		errorResponse(c, h.logger, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:   token.ID.String(),
		BotLink: fmt.Sprintf("%s?start=%s", h.cfg.Telegram.BotLink, token.ID.String()),
	})
}

// CheckAuthStatus is polled by the login page until the Telegram side
// has claimed the token. It always answers 200: an unknown, expired or
// not-yet-claimed token is a normal "keep waiting", not an error.
// GET /api/v1/auth/check-auth-status?token=<id>
func (h *AuthHandler) CheckAuthStatus(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		h.logger.Info("No token provided in auth status poll")
		c.JSON(http.StatusOK, models.AuthStatusResponse{IsAuthenticated: false})
		return
	}

	tokenID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusOK, models.AuthStatusResponse{IsAuthenticated: false})
		return
	}

	session, err := h.authService.CheckAuthStatus(c.Request.Context(), tokenID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		metrics.AuthStatusPollsTotal.WithLabelValues("pending").Inc()
		c.JSON(http.StatusOK, models.AuthStatusResponse{IsAuthenticated: false})
		return
	}

	metrics.AuthStatusPollsTotal.WithLabelValues("authenticated").Inc()
	maxAge := int(h.cfg.Session.TTL.Seconds())
	c.SetCookie(h.cfg.Session.CookieName, session.ID.String(), maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, models.AuthStatusResponse{IsAuthenticated: true})
}

// TelegramAuth accepts the bot's submission of a token plus the sender's
// Telegram identity. All token rejections collapse into one 400 message
// so internal state is not leaked.
// POST /api/v1/auth/telegram-auth
func (h *AuthHandler) TelegramAuth(c *gin.Context) {
	var req models.TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.TelegramAuthTotal.WithLabelValues("bad_request").Inc()
		errorResponse(c, h.logger, http.StatusBadRequest, "Missing required fields", err)
		return
	}

	user, err := h.authService.TelegramAuth(c.Request.Context(), req)
	if err != nil {
		if domainErrors.IsTokenRejection(err) {
			metrics.TelegramAuthTotal.WithLabelValues("rejected").Inc()
			errorResponse(c, h.logger, http.StatusBadRequest, "Invalid or expired token", err)
			return
		}
		metrics.TelegramAuthTotal.WithLabelValues("error").Inc()
		errorResponse(c, h.logger, http.StatusInternalServerError, "Authentication failed", err)
		return
	}

	metrics.TelegramAuthTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User authenticated successfully!",
		"user":    user.ToResponse(),
	})
}
