package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"smartparking-backend/internal/logger"
)

//go:embed schema.sql
var schema string

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("MIGRATE", "schema.sql")
	_, err := db.ExecContext(ctx, schema)
	logger.DatabaseResult("MIGRATE", 0, err)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
