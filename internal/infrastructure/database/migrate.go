// File: internal/infrastructure/database/migrate.go
package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/balancy/login-via-telegram/internal/config"
)

// MigrateUp applies all pending migrations from the configured path.
// ErrNoChange is not an error.
func MigrateUp(cfg config.DatabaseConfig, logger *zap.Logger) error {
	migrator, err := migrate.New(
		fmt.Sprintf("file://%s", cfg.MigrationsPath),
		DSN(cfg),
	)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No new migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations applied successfully")
	return nil
}
