package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/hjemly/hjemly/internal/domain/correction"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
)

type correctionRepository struct {
	db     *storage.Client
	logger *logger.Logger
}

func NewCorrectionRepository(db *storage.Client, logger *logger.Logger) correction.Repository {
	return &correctionRepository{db: db, logger: logger}
}

func (r *correctionRepository) Find(ctx context.Context, filter *correction.Filter) ([]*correction.Correction, error) {
	query := `SELECT data FROM corrections WHERE 1=1`
	var args []any

	if filter != nil {
		if filter.ContractID != "" {
			query += " AND contract_id = ?"
			args = append(args, filter.ContractID)
		}
		if filter.PendingOnly {
			query += " AND invoiced = false"
		}
	}
	query += " ORDER BY id ASC"

	q := r.db.Querier(ctx)
	var rows [][]byte
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list corrections").
			Mark(ierr.ErrDatabase)
	}

	corrections := make([]*correction.Correction, 0, len(rows))
	for _, data := range rows {
		var c correction.Correction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, ierr.WithError(err).
				WithHint("failed to deserialize correction").
				Mark(ierr.ErrDatabase)
		}
		corrections = append(corrections, &c)
	}
	return corrections, nil
}

func (r *correctionRepository) GetByID(ctx context.Context, id string) (*correction.Correction, error) {
	query := `SELECT data FROM corrections WHERE id = $1`

	var data []byte
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &data, query, id)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("correction not found").
			WithHintf("no correction with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to load correction %s", id).
			Mark(ierr.ErrDatabase)
	}

	var c correction.Correction
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to deserialize correction").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *correctionRepository) Update(ctx context.Context, c *correction.Correction) error {
	query := `UPDATE corrections SET invoiced = $2, data = $3, updated_at = $4 WHERE id = $1`

	data, err := json.Marshal(c)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to serialize correction").
			Mark(ierr.ErrDatabase)
	}

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, c.ID, c.Invoiced, data, c.UpdatedAt)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to update correction %s", c.ID).
			Mark(ierr.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("correction not found").
			WithHintf("no correction with id %s", c.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}
