package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/hjemly/hjemly/internal/domain/contract"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
)

type contractRepository struct {
	db     *storage.Client
	logger *logger.Logger
}

func NewContractRepository(db *storage.Client, logger *logger.Logger) contract.Repository {
	return &contractRepository{db: db, logger: logger}
}

func (r *contractRepository) Get(ctx context.Context, id string) (*contract.Contract, error) {
	query := `SELECT data FROM contracts WHERE id = $1`

	var data []byte
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &data, query, id)
	if err == sql.ErrNoRows {
		// The service layer treats a nil contract as not-found.
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to load contract %s", id).
			Mark(ierr.ErrDatabase)
	}

	var c contract.Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to deserialize contract").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *contractRepository) Update(ctx context.Context, c *contract.Contract) error {
	query := `UPDATE contracts SET data = $2, updated_at = $3 WHERE id = $1`

	data, err := json.Marshal(c)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to serialize contract").
			Mark(ierr.ErrDatabase)
	}

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, c.ID, data, c.UpdatedAt)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to update contract %s", c.ID).
			Mark(ierr.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("contract not found").
			WithHintf("no contract with id %s", c.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}
