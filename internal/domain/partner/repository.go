package partner

import "context"

// Repository defines the interface for partner setting lookups.
type Repository interface {
	// GetByPartnerID retrieves the setting for a partner
	GetByPartnerID(ctx context.Context, partnerID string) (*Setting, error)
}
