package testutil

import (
	"context"
	"fmt"

	"github.com/hjemly/hjemly/internal/domain/partner"
	ierr "github.com/hjemly/hjemly/internal/errors"
)

// InMemoryPartnerStore implements partner.Repository, keyed by partner ID.
type InMemoryPartnerStore struct {
	*InMemoryStore[*partner.Setting]
}

func NewInMemoryPartnerStore() *InMemoryPartnerStore {
	return &InMemoryPartnerStore{
		InMemoryStore: NewInMemoryStore[*partner.Setting](),
	}
}

// Add seeds a partner setting keyed by its PartnerID.
func (s *InMemoryPartnerStore) Add(ctx context.Context, setting *partner.Setting) error {
	if setting == nil {
		return fmt.Errorf("setting cannot be nil")
	}
	cp := *setting
	if s.Has(setting.PartnerID) {
		return s.InMemoryStore.Update(ctx, setting.PartnerID, &cp)
	}
	return s.InMemoryStore.Create(ctx, setting.PartnerID, &cp)
}

func (s *InMemoryPartnerStore) GetByPartnerID(ctx context.Context, partnerID string) (*partner.Setting, error) {
	setting, err := s.InMemoryStore.Get(ctx, partnerID)
	if err != nil {
		return nil, ierr.NewError("partner setting not found").
			WithHintf("no setting for partner %s", partnerID).
			Mark(ierr.ErrNotFound)
	}
	cp := *setting
	return &cp, nil
}
