package storage

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func prepareGoose() error {
	goose.SetBaseFS(migrationsFS)
	return goose.SetDialect("postgres")
}

func (s *PostgresStorage) RunMigrations(ctx context.Context) error {
	const operation = "storage.RunMigrations"

	s.logger.Info("Running database migrations...")

	if err := prepareGoose(); err != nil {
		return fmt.Errorf("%s: failed to set dialect: %w", operation, err)
	}

	if err := goose.UpContext(ctx, s.db.DB, migrationsDir); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", operation, err)
	}

	s.logger.Info("Database migrations completed successfully")
	return nil
}

func (s *PostgresStorage) RollbackMigration(ctx context.Context) error {
	const operation = "storage.RollbackMigration"

	s.logger.Info("Rolling back last migration...")

	if err := prepareGoose(); err != nil {
		return fmt.Errorf("%s: failed to set dialect: %w", operation, err)
	}

	if err := goose.DownContext(ctx, s.db.DB, migrationsDir); err != nil {
		return fmt.Errorf("%s: failed to rollback migration: %w", operation, err)
	}

	s.logger.Info("Migration rollback completed")
	return nil
}

func (s *PostgresStorage) MigrationStatus(ctx context.Context) error {
	const operation = "storage.MigrationStatus"

	if err := prepareGoose(); err != nil {
		return fmt.Errorf("%s: failed to set dialect: %w", operation, err)
	}

	if err := goose.StatusContext(ctx, s.db.DB, migrationsDir); err != nil {
		return fmt.Errorf("%s: failed to check migration status: %w", operation, err)
	}
	return nil
}
