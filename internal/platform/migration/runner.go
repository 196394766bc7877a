// Copyright (c) 2026 Komira. All rights reserved.

// Package migration runs the SQL schema migrations at startup via
// golang-migrate, so the server never takes traffic against a stale or
// half-applied schema.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Registers the "pgx5" database scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// Registers the "file" source scheme for .sql files on disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

/*
RunUp applies every pending up migration.

Description: A dirty database (a previous run died mid-migration) aborts
startup; an automatic retry on a half-applied migration could make things
worse, so recovery is left to an operator. A database already at the
latest version is not an error.

Parameters:
  - dsn: string (postgres:// or postgresql:// URL)
  - migrationsPath: string (directory holding the .sql files)
  - logger: *slog.Logger

Returns:
  - error: Init failures, a dirty schema, or a failed migration.
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if sourceErr != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
		}
		if databaseErr != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", databaseErr))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	currentVersion, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", currentVersion)
	}

	logger.Info("migration_started", slog.Int("current_version", int(currentVersion)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(currentVersion)),
		slog.Int("to_version", int(newVersion)),
	)

	return nil
}

// pgx5URL rewrites a postgres URL onto the pgx5:// scheme golang-migrate's
// pgx/v5 driver registers under.
func pgx5URL(dsn string) string {
	if rest, found := strings.CutPrefix(dsn, "postgresql://"); found {
		return "pgx5://" + rest
	}
	if rest, found := strings.CutPrefix(dsn, "postgres://"); found {
		return "pgx5://" + rest
	}
	return dsn
}

// migrateLogger bridges golang-migrate's logger onto slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (bridge *migrateLogger) Printf(format string, args ...any) {
	bridge.logger.Debug(fmt.Sprintf(format, args...))
}

func (bridge *migrateLogger) Verbose() bool { return false }
