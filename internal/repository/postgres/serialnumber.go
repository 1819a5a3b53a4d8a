package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/hjemly/hjemly/internal/domain/invoice"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
)

type serialNumberService struct {
	db     *storage.Client
	logger *logger.Logger
}

func NewSerialNumberService(db *storage.Client, logger *logger.Logger) invoice.SerialNumberService {
	return &serialNumberService{db: db, logger: logger}
}

// Next allocates the next serial for the scope atomically. The row lock taken
// by the upsert serializes concurrent allocations within the same scope.
func (s *serialNumberService) Next(ctx context.Context, scopeKey string) (int, error) {
	query := `
	INSERT INTO serial_numbers (scope_key, current)
	VALUES ($1, 1)
	ON CONFLICT (scope_key)
	DO UPDATE SET current = serial_numbers.current + 1
	RETURNING current
	`

	var serial int
	if err := sqlx.GetContext(ctx, s.db.Querier(ctx), &serial, query, scopeKey); err != nil {
		return 0, ierr.WithError(err).
			WithHintf("failed to allocate serial for scope %s", scopeKey).
			Mark(ierr.ErrDatabase)
	}
	return serial, nil
}
