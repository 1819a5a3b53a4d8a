package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/hjemly/hjemly/internal/domain/invoice"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/storage"
	"github.com/hjemly/hjemly/internal/types"
)

// Invoices are stored document-style: the filterable columns are extracted,
// the full payload lives in data. The columns must be kept in sync with the
// payload on every write.
type invoiceRepository struct {
	db     *storage.Client
	logger *logger.Logger
}

func NewInvoiceRepository(db *storage.Client, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	INSERT INTO invoices (
		id, partner_id, contract_id, property_id, invoice_type, invoice_status,
		invoice_start_on, invoice_end_on, is_correction, data,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	)
	`

	data, err := json.Marshal(inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to serialize invoice").
			Mark(ierr.ErrDatabase)
	}

	_, err = r.db.Querier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.PartnerID,
		inv.ContractID,
		inv.PropertyID,
		inv.InvoiceType,
		inv.InvoiceStatus,
		inv.InvoiceStartOn,
		inv.InvoiceEndOn,
		inv.IsCorrectionInvoice,
		data,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to insert invoice %s", inv.ID).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT data FROM invoices WHERE id = $1`

	var data []byte
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &data, query, id)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("invoice not found").
			WithHintf("no invoice with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to load invoice %s", id).
			Mark(ierr.ErrDatabase)
	}

	return unmarshalInvoice(data)
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	UPDATE invoices SET
		invoice_type = $2, invoice_status = $3,
		invoice_start_on = $4, invoice_end_on = $5,
		is_correction = $6, data = $7, updated_at = $8
	WHERE id = $1
	`

	data, err := json.Marshal(inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to serialize invoice").
			Mark(ierr.ErrDatabase)
	}

	res, err := r.db.Querier(ctx).ExecContext(ctx, query,
		inv.ID,
		inv.InvoiceType,
		inv.InvoiceStatus,
		inv.InvoiceStartOn,
		inv.InvoiceEndOn,
		inv.IsCorrectionInvoice,
		data,
		inv.UpdatedAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to update invoice %s", inv.ID).
			Mark(ierr.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("invoice not found").
			WithHintf("no invoice with id %s", inv.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	query, args, err := buildInvoiceQuery("SELECT data FROM invoices", filter, "ORDER BY invoice_start_on ASC")
	if err != nil {
		return nil, err
	}

	q := r.db.Querier(ctx)
	var rows [][]byte
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))
	for _, data := range rows {
		inv, err := unmarshalInvoice(data)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	query, args, err := buildInvoiceQuery("SELECT COUNT(*) FROM invoices", filter, "")
	if err != nil {
		return 0, err
	}

	q := r.db.Querier(ctx)
	var count int
	if err := sqlx.GetContext(ctx, q, &count, q.Rebind(query), args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func buildInvoiceQuery(selectClause string, filter *types.InvoiceFilter, orderClause string) (string, []any, error) {
	query := selectClause + " WHERE 1=1"
	var args []any

	if filter != nil {
		if filter.ContractID != "" {
			query += " AND contract_id = ?"
			args = append(args, filter.ContractID)
		}
		if filter.PropertyID != "" {
			query += " AND property_id = ?"
			args = append(args, filter.PropertyID)
		}
		if len(filter.InvoiceTypes) > 0 {
			query += " AND invoice_type IN (?)"
			args = append(args, filter.InvoiceTypes)
		}
		if len(filter.Statuses) > 0 {
			query += " AND invoice_status IN (?)"
			args = append(args, filter.Statuses)
		}
		if filter.ExcludeCorrections {
			query += " AND is_correction = false"
		}
		if filter.ExcludeCancelled {
			query += " AND invoice_status != ?"
			args = append(args, types.InvoiceStatusCancelled)
		}
	}

	if orderClause != "" {
		query += " " + orderClause
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, ierr.WithError(err).
			WithHint("failed to build invoice query").
			Mark(ierr.ErrDatabase)
	}
	return query, args, nil
}

func unmarshalInvoice(data []byte) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to deserialize invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}
