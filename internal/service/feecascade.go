package service

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/types"
)

// FeeCascadeService re-bills unpaid penalty fees on the next invoice of a
// contract. The carried fee nets to zero across the pair: the old invoice
// gains a negative move-to entry and the new invoice an equal positive
// unpaid entry pointing back at the old invoice.
type FeeCascadeService interface {
	// CarryForward scans the contract's prior invoices for unpaid
	// cascadable fees and moves them onto newInvoice. It mutates newInvoice
	// in place and returns the prior invoices that were modified and must be
	// persisted in the same transaction.
	CarryForward(ctx context.Context, contractID string, newInvoice *invoice.Invoice) ([]*invoice.Invoice, error)
}

type feeCascadeService struct {
	ServiceParams
}

func NewFeeCascadeService(params ServiceParams) FeeCascadeService {
	return &feeCascadeService{ServiceParams: params}
}

func (s *feeCascadeService) CarryForward(
	ctx context.Context,
	contractID string,
	newInvoice *invoice.Invoice,
) ([]*invoice.Invoice, error) {
	// Fees cascade onto tenant period invoices only, and never onto the
	// first invoice of a contract.
	if newInvoice.IsFirstInvoice || newInvoice.InvoiceType != types.InvoiceTypeInvoice {
		return nil, nil
	}

	prior, err := s.InvoiceRepo.List(ctx, types.NewPeriodInvoiceFilter(contractID))
	if err != nil {
		return nil, err
	}

	// Most recent invoices first; for each fee type only the latest unpaid
	// instance is carried, the chain behind it has already been moved.
	sort.SliceStable(prior, func(i, j int) bool {
		return prior[j].InvoiceStartOn.Before(prior[i].InvoiceStartOn)
	})

	carried := map[types.FeeType]bool{}
	var modified []*invoice.Invoice

	for _, old := range prior {
		if old.ID == newInvoice.ID || !old.InvoiceEndOn.Before(newInvoice.InvoiceStartOn) {
			continue
		}

		// The move-to traces are appended after the loop so the fee
		// pointers stay valid while they are being settled.
		var traces []invoice.FeeMeta
		for _, fee := range old.UnpaidCascadableFees() {
			unpaidForm, err := fee.Type.UnpaidForm()
			if err != nil {
				return nil, err
			}
			if carried[unpaidForm] {
				continue
			}
			moveToForm, err := fee.Type.MoveToForm()
			if err != nil {
				return nil, err
			}

			// Settle the fee on the old invoice and leave the negative
			// move-to trace behind.
			fee.IsPaid = true
			traces = append(traces, invoice.FeeMeta{
				ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
				Type:   moveToForm,
				Amount: fee.Amount.Neg(),
				Tax:    fee.Tax.Neg(),
				Total:  fee.Total.Neg(),
				IsPaid: true,
			})
			old.InvoiceTotal = old.InvoiceTotal.Sub(fee.Total)
			old.TotalTAX = old.TotalTAX.Sub(fee.Tax)

			// Re-issue on the new invoice, tagged with its origin.
			newInvoice.FeesMeta = append(newInvoice.FeesMeta, invoice.FeeMeta{
				ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FEE),
				Type:      unpaidForm,
				Amount:    fee.Amount,
				Tax:       fee.Tax,
				Total:     fee.Total,
				InvoiceID: lo.ToPtr(old.ID),
			})

			carried[unpaidForm] = true

			s.Logger.Infow("carried unpaid fee forward",
				"contract_id", contractID,
				"fee_type", fee.Type,
				"from_invoice", old.ID,
				"amount", fee.Total)
		}

		if len(traces) > 0 {
			old.FeesMeta = append(old.FeesMeta, traces...)
			modified = append(modified, old)
		}
	}

	return modified, nil
}
