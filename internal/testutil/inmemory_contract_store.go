package testutil

import (
	"context"
	"fmt"

	"github.com/hjemly/hjemly/internal/domain/contract"
)

// InMemoryContractStore implements contract.Repository
type InMemoryContractStore struct {
	*InMemoryStore[*contract.Contract]
}

func NewInMemoryContractStore() *InMemoryContractStore {
	return &InMemoryContractStore{
		InMemoryStore: NewInMemoryStore[*contract.Contract](),
	}
}

func copyContract(c *contract.Contract) *contract.Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.Addons = append([]contract.ContractAddon(nil), c.Addons...)
	if c.RentalMeta.EstimatedPayouts != nil {
		out.RentalMeta.EstimatedPayouts = append(out.RentalMeta.EstimatedPayouts[:0:0], c.RentalMeta.EstimatedPayouts...)
	}
	return &out
}

// Add seeds a contract, replacing any existing one with the same ID.
func (s *InMemoryContractStore) Add(ctx context.Context, c *contract.Contract) error {
	if c == nil {
		return fmt.Errorf("contract cannot be nil")
	}
	if s.Has(c.ID) {
		return s.InMemoryStore.Update(ctx, c.ID, copyContract(c))
	}
	return s.InMemoryStore.Create(ctx, c.ID, copyContract(c))
}

func (s *InMemoryContractStore) Get(ctx context.Context, id string) (*contract.Contract, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		// The service layer treats a missing contract as nil, not an error.
		return nil, nil
	}
	return copyContract(c), nil
}

func (s *InMemoryContractStore) Update(ctx context.Context, c *contract.Contract) error {
	if c == nil {
		return fmt.Errorf("contract cannot be nil")
	}
	return s.InMemoryStore.Update(ctx, c.ID, copyContract(c))
}
