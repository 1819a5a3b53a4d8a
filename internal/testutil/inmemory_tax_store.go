package testutil

import (
	"context"
	"sync"

	"github.com/hjemly/hjemly/internal/domain/tax"
	ierr "github.com/hjemly/hjemly/internal/errors"
)

// InMemoryTaxStore implements tax.Repository
type InMemoryTaxStore struct {
	mu       sync.RWMutex
	accounts map[string]*tax.LedgerAccount
	codes    map[string]*tax.TaxCode
}

func NewInMemoryTaxStore() *InMemoryTaxStore {
	return &InMemoryTaxStore{
		accounts: make(map[string]*tax.LedgerAccount),
		codes:    make(map[string]*tax.TaxCode),
	}
}

// AddLedgerAccount seeds a ledger account.
func (s *InMemoryTaxStore) AddLedgerAccount(account tax.LedgerAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = &account
}

// AddTaxCode seeds a tax code.
func (s *InMemoryTaxStore) AddTaxCode(code tax.TaxCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.ID] = &code
}

func (s *InMemoryTaxStore) GetLedgerAccount(ctx context.Context, id string) (*tax.LedgerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[id]; ok {
		cp := *account
		return &cp, nil
	}
	return nil, ierr.NewError("ledger account not found").
		WithHintf("no ledger account with id %s", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryTaxStore) GetTaxCode(ctx context.Context, id string) (*tax.TaxCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if code, ok := s.codes[id]; ok {
		cp := *code
		return &cp, nil
	}
	return nil, ierr.NewError("tax code not found").
		WithHintf("no tax code with id %s", id).
		Mark(ierr.ErrNotFound)
}

// Clear removes all ledger accounts and tax codes
func (s *InMemoryTaxStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*tax.LedgerAccount)
	s.codes = make(map[string]*tax.TaxCode)
}
