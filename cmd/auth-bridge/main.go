// File: cmd/auth-bridge/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/balancy/login-via-telegram/internal/config"
	postgresRepo "github.com/balancy/login-via-telegram/internal/domain/repository/postgres"
	redisRepo "github.com/balancy/login-via-telegram/internal/domain/repository/redis"
	"github.com/balancy/login-via-telegram/internal/events/kafka"
	httpHandler "github.com/balancy/login-via-telegram/internal/handler/http"
	"github.com/balancy/login-via-telegram/internal/infrastructure/database"
	"github.com/balancy/login-via-telegram/internal/infrastructure/security"
	"github.com/balancy/login-via-telegram/internal/service"
	"github.com/balancy/login-via-telegram/internal/utils/logger"
)

func main() {
	// .env is optional, real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("Service terminated", zap.Error(err))
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(cfg.Database, appLogger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	pool, err := database.NewDBPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, appLogger, "auth-bridge")
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer func() { _ = producer.Close() }()
	} else {
		appLogger.Info("Kafka brokers not configured, event publishing disabled")
	}

	tokenRepo := postgresRepo.NewAuthTokenRepositoryPostgres(pool, appLogger)
	userRepo := postgresRepo.NewUserRepositoryPostgres(pool, appLogger)
	identityRepo := postgresRepo.NewTelegramIdentityRepositoryPostgres(pool, appLogger)
	txManager := postgresRepo.NewTxManager(pool)
	sessionStore := redisRepo.NewSessionStore(redisClient, appLogger, cfg.Session.TTL)

	hasher, err := security.NewArgon2idPasswordService(security.DefaultArgon2idParams())
	if err != nil {
		return fmt.Errorf("failed to create password hasher: %w", err)
	}

	tokenService := service.NewTokenService(appLogger, tokenRepo, cfg.Auth.TokenTTL)
	linkService := service.NewLinkService(appLogger, txManager, userRepo, identityRepo, hasher, producer, cfg.Auth.PasswordLength)
	authService := service.NewAuthService(appLogger, tokenService, linkService, sessionStore, cfg.Session.TTL)

	sweeper := startTokenSweeper(tokenService, cfg.Auth.SweepInterval, appLogger)
	defer sweeper.Stop()

	router := httpHandler.SetupRouter(authService, tokenService, cfg, appLogger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	appLogger.Info("Server stopped gracefully")
	return nil
}

// startTokenSweeper schedules the periodic cleanup of expired unclaimed
// tokens. Claimed tokens are never swept, the polling endpoint consumes
// them.
func startTokenSweeper(tokens *service.TokenService, interval time.Duration, appLogger *zap.Logger) *cron.Cron {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := c.AddFunc(spec, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := tokens.SweepExpiredUnclaimed(sweepCtx); err != nil {
			appLogger.Error("Token sweep failed", zap.Error(err))
		}
	}); err != nil {
		appLogger.Error("Failed to schedule token sweep", zap.Error(err))
		return c
	}
	c.Start()
	appLogger.Info("Token sweeper scheduled", zap.Duration("interval", interval))
	return c
}
