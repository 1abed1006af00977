package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"assetbazaar/internal/infrastructure/datastore/migrations"
)

// Migrate runs a goose command (up, down, status, ...) against the embedded schema.
func Migrate(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
