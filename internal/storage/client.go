package storage

import "context"

// IClient is the unit-of-work boundary owned by the surrounding platform.
// Range reconciliation re-reads persisted invoices and writes the new invoice
// inside one WithTx call, which is what guarantees at-most-one invoice per
// contract period under concurrent generation runs. The engine never manages
// connections or locks itself.
type IClient interface {
	// WithTx wraps the given function in a transaction. The ctx passed to fn
	// carries the transactional session; repositories must honor it.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopClient runs the function without any transactional guarantee. It backs
// tests and preview (read-only) flows.
type NoopClient struct{}

func NewNoopClient() IClient {
	return &NoopClient{}
}

func (c *NoopClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
