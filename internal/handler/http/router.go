// File: internal/handler/http/router.go
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/balancy/login-via-telegram/internal/config"
	"github.com/balancy/login-via-telegram/internal/handler/http/middleware"
	"github.com/balancy/login-via-telegram/internal/service"
)

// SetupRouter wires the HTTP routes.
func SetupRouter(
	authService *service.AuthService,
	tokenService *service.TokenService,
	cfg *config.Config,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CorsMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(logger, authService, tokenService, cfg)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.GET("/login", authHandler.Login)
			auth.GET("/check-auth-status", authHandler.CheckAuthStatus)
			auth.POST("/telegram-auth", authHandler.TelegramAuth)
		}
	}

	return router
}
