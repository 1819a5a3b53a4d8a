package testutil

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/hjemly/hjemly/internal/domain/correction"
	ierr "github.com/hjemly/hjemly/internal/errors"
)

// InMemoryCorrectionStore implements correction.Repository
type InMemoryCorrectionStore struct {
	*InMemoryStore[*correction.Correction]
}

func NewInMemoryCorrectionStore() *InMemoryCorrectionStore {
	return &InMemoryCorrectionStore{
		InMemoryStore: NewInMemoryStore[*correction.Correction](),
	}
}

func copyCorrection(c *correction.Correction) *correction.Correction {
	if c == nil {
		return nil
	}
	out := *c
	out.Addons = append([]correction.CorrectionAddon(nil), c.Addons...)
	if c.InvoiceID != nil {
		out.InvoiceID = lo.ToPtr(*c.InvoiceID)
	}
	return &out
}

// Add seeds a correction.
func (s *InMemoryCorrectionStore) Add(ctx context.Context, c *correction.Correction) error {
	if c == nil {
		return fmt.Errorf("correction cannot be nil")
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyCorrection(c))
}

func (s *InMemoryCorrectionStore) Find(ctx context.Context, filter *correction.Filter) ([]*correction.Correction, error) {
	items, err := s.InMemoryStore.List(ctx, filter,
		func(ctx context.Context, c *correction.Correction, f interface{}) bool {
			flt, ok := f.(*correction.Filter)
			if !ok || flt == nil {
				return true
			}
			if flt.ContractID != "" && c.ContractID != flt.ContractID {
				return false
			}
			if flt.PendingOnly && c.Invoiced {
				return false
			}
			return true
		},
		func(i, j *correction.Correction) bool {
			return i.ID < j.ID
		})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *correction.Correction, _ int) *correction.Correction {
		return copyCorrection(c)
	}), nil
}

func (s *InMemoryCorrectionStore) GetByID(ctx context.Context, id string) (*correction.Correction, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("correction not found").
			WithHintf("no correction with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copyCorrection(c), nil
}

func (s *InMemoryCorrectionStore) Update(ctx context.Context, c *correction.Correction) error {
	if c == nil {
		return fmt.Errorf("correction cannot be nil")
	}
	return s.InMemoryStore.Update(ctx, c.ID, copyCorrection(c))
}
