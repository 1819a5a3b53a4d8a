package correction

import "context"

// Filter narrows correction queries.
type Filter struct {
	ContractID string
	// PendingOnly limits to corrections not yet folded into an invoice.
	PendingOnly bool
}

// Repository defines the interface for correction lookups.
type Repository interface {
	// Find retrieves corrections matching the filter
	Find(ctx context.Context, filter *Filter) ([]*Correction, error)

	// GetByID retrieves a correction by ID
	GetByID(ctx context.Context, id string) (*Correction, error)

	// Update updates a correction (marks it invoiced)
	Update(ctx context.Context, correction *Correction) error
}
