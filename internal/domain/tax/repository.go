package tax

import "context"

// Repository resolves ledger accounts and tax codes. Consumed as a black box;
// the chart of accounts is owned by the accounting subsystem.
type Repository interface {
	// GetLedgerAccount retrieves a ledger account by ID
	GetLedgerAccount(ctx context.Context, id string) (*LedgerAccount, error)

	// GetTaxCode retrieves a tax code by ID
	GetTaxCode(ctx context.Context, id string) (*TaxCode, error)
}
