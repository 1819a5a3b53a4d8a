package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/hjemly/hjemly/internal/domain/tax"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
)

type taxRepository struct {
	db     *storage.Client
	logger *logger.Logger
}

func NewTaxRepository(db *storage.Client, logger *logger.Logger) tax.Repository {
	return &taxRepository{db: db, logger: logger}
}

func (r *taxRepository) GetLedgerAccount(ctx context.Context, id string) (*tax.LedgerAccount, error) {
	query := `SELECT id, tax_code_id FROM ledger_accounts WHERE id = $1`

	var account tax.LedgerAccount
	err := r.db.Querier(ctx).QueryRowxContext(ctx, query, id).Scan(&account.ID, &account.TaxCodeID)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("ledger account not found").
			WithHintf("no ledger account with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to load ledger account %s", id).
			Mark(ierr.ErrDatabase)
	}
	return &account, nil
}

func (r *taxRepository) GetTaxCode(ctx context.Context, id string) (*tax.TaxCode, error) {
	query := `SELECT id, percent FROM tax_codes WHERE id = $1`

	var code tax.TaxCode
	var percent string
	err := r.db.Querier(ctx).QueryRowxContext(ctx, query, id).Scan(&code.ID, &percent)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("tax code not found").
			WithHintf("no tax code with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to load tax code %s", id).
			Mark(ierr.ErrDatabase)
	}

	code.Percent, err = decimal.NewFromString(percent)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("invalid percent on tax code %s", id).
			Mark(ierr.ErrDatabase)
	}
	return &code, nil
}
