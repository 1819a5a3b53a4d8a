package testutil

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/hjemly/hjemly/internal/domain/invoice"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.InvoiceContent = append([]invoice.ContentItem(nil), inv.InvoiceContent...)
	out.AddonsMeta = append([]invoice.AddonMeta(nil), inv.AddonsMeta...)
	out.FeesMeta = append([]invoice.FeeMeta(nil), inv.FeesMeta...)
	out.CommissionsMeta = append([]invoice.CommissionMeta(nil), inv.CommissionsMeta...)
	out.InvoiceMonths = append([]invoice.InvoiceMonth(nil), inv.InvoiceMonths...)
	out.CreditNoteIDs = append([]string(nil), inv.CreditNoteIDs...)
	if inv.InvoiceID != nil {
		out.InvoiceID = lo.ToPtr(*inv.InvoiceID)
	}
	return &out
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice cannot be nil")
	}
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("no invoice with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return fmt.Errorf("invoice cannot be nil")
	}
	return s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv))
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if f.ContractID != "" && inv.ContractID != f.ContractID {
		return false
	}
	if f.PropertyID != "" && inv.PropertyID != f.PropertyID {
		return false
	}
	if len(f.InvoiceTypes) > 0 && !lo.Contains(f.InvoiceTypes, inv.InvoiceType) {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, inv.InvoiceStatus) {
		return false
	}
	if f.ExcludeCorrections && inv.IsCorrectionInvoice {
		return false
	}
	if f.ExcludeCancelled && inv.InvoiceStatus == types.InvoiceStatusCancelled {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return i.InvoiceStartOn.Before(j.InvoiceStartOn)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}
