package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations brings the catalog schema up to date. The migrations are
// plain goose SQL files and the server applies them on boot, so a fresh
// database needs no manual setup step.
func RunMigrations(db *sql.DB, dir string, logger *zap.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Applying pending schema migrations", zap.String("dir", dir))

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Catalog schema is up to date")
	return nil
}
