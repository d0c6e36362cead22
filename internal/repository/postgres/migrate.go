package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dtroode/accounts-server/internal/repository/postgres/migrations"
)

const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// gooseRunContext is a seam for testing goose.RunContext.
var gooseRunContext = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
	return goose.RunContext(ctx, command, db, dir, args...)
}

// Migrate applies a goose command using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string) error {
	switch command {
	case MigrateUp, MigrateDown, MigrateStatus:
	default:
		return fmt.Errorf("unsupported migration command %q", command)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseRunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations %s: %w", command, err)
	}

	return nil
}
