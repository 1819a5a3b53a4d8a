package postgres

import (
	"context"
	_ "embed"

	"github.com/jmoiron/sqlx"

	ierr "github.com/hjemly/hjemly/internal/errors"
)

//go:embed schema.sql
var schema string

// Migrate applies the idempotent schema DDL.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return ierr.WithError(err).
			WithHint("failed to apply database schema").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
