package invoice

import (
	"context"

	"github.com/hjemly/hjemly/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// Implementations must honor the transactional session carried on ctx by
// storage.IClient.WithTx: reconciliation reads and the subsequent create are
// required to observe the same snapshot.
type Repository interface {
	// Create creates a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria, ordered by period
	// start ascending
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}

// SerialNumberService hands out the next invoice serial for a scope key
// (partner + invoice type). Backed externally; KID/checksum generation lives
// behind the same boundary.
type SerialNumberService interface {
	Next(ctx context.Context, scopeKey string) (int, error)
}
