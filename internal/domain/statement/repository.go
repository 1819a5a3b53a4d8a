package statement

import "context"

// Repository exposes the annual-statement closing state. A year covered by a
// finalized annual statement is financially closed: no invoice may be created
// for a period that falls wholly inside it.
type Repository interface {
	// LatestClosedYear returns the most recent year with a finalized annual
	// statement for the account, or 0 when none exists.
	LatestClosedYear(ctx context.Context, partnerID, accountID string) (int, error)
}
