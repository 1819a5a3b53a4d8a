package contract

import "context"

// Repository defines the interface for contract persistence operations.
// Storage itself is owned by the surrounding platform.
type Repository interface {
	// Get retrieves a contract by ID
	Get(ctx context.Context, id string) (*Contract, error)

	// Update updates an existing contract (invoiced-as-on bookkeeping,
	// CPI-driven rent changes, estimated payouts)
	Update(ctx context.Context, contract *Contract) error
}
