package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/types"
)

// CommissionService computes the agent-side income entries of an invoice and
// the three-cycle payout estimation stored on the contract.
type CommissionService interface {
	// ComputeCommissions returns the commission entries for an assembled
	// invoice. The invoice's rent and addon totals must already be computed.
	ComputeCommissions(ctx context.Context, c *contract.Contract, inv *invoice.Invoice) ([]invoice.CommissionMeta, error)

	// EstimatePayouts runs the invoice pipeline in estimation mode for the
	// first three expected invoices of the contract and derives the net
	// payout per cycle, carrying negative cycles forward but never past the
	// third.
	EstimatePayouts(ctx context.Context, c *contract.Contract, pctx *partner.Context) ([]types.EstimatedPayout, error)
}

type commissionService struct {
	ServiceParams
}

func NewCommissionService(params ServiceParams) CommissionService {
	return &commissionService{ServiceParams: params}
}

func (s *commissionService) ComputeCommissions(
	ctx context.Context,
	c *contract.Contract,
	inv *invoice.Invoice,
) ([]invoice.CommissionMeta, error) {
	var entries []invoice.CommissionMeta

	// Brokering commission applies to the first invoice only.
	if inv.IsFirstInvoice && c.BrokeringTerm.IsSet() {
		monthlyRent := c.MonthlyRent(inv.InvoiceStartOn)
		entries = append(entries, invoice.CommissionMeta{
			Type:  types.CommissionTypeBrokering,
			Total: c.BrokeringTerm.Apply(monthlyRent),
		})
	}

	// Management commission runs on the commissionable total: rent plus the
	// addon lines that do not carry their own addon commission.
	if c.ManagementTerm.IsSet() {
		entries = append(entries, invoice.CommissionMeta{
			Type:  types.CommissionTypeRentalManagement,
			Total: c.ManagementTerm.Apply(commissionableTotal(inv)),
		})
	}

	// Addon commission per recurring commission-enabled lease addon, percent
	// resolved per addon with the property-contract default as fallback.
	for _, meta := range inv.AddonsMeta {
		if !meta.EnableCommission || !meta.IsRecurring || meta.Type != types.AddonTypeLease {
			continue
		}
		percent := c.AddonCommissionPercent
		if meta.CommissionPercent != nil {
			percent = *meta.CommissionPercent
		}
		if percent.LessThanOrEqual(decimal.Zero) {
			continue
		}
		entries = append(entries, invoice.CommissionMeta{
			Type:    types.CommissionTypeAddon,
			AddonID: meta.AddonID,
			Total:   meta.Total.Mul(percent).Div(decimal.NewFromInt(100)),
		})
	}

	// Assignment addon income lands on the first invoice, never prorated.
	if inv.IsFirstInvoice {
		for _, addon := range c.AssignmentAddons() {
			entries = append(entries, invoice.CommissionMeta{
				Type:    types.CommissionTypeAssignmentAddonIncome,
				AddonID: addon.AddonID,
				Total:   addon.Price,
			})
		}
	}

	return entries, nil
}

func (s *commissionService) EstimatePayouts(
	ctx context.Context,
	c *contract.Contract,
	pctx *partner.Context,
) ([]types.EstimatedPayout, error) {
	invoiceService := NewInvoiceService(s.ServiceParams)

	previews, err := invoiceService.PreviewInvoices(ctx, PreviewRequest{
		ContractID: c.ID,
		Estimation: true,
	})
	if err != nil {
		return nil, err
	}

	payouts := make([]types.EstimatedPayout, 0, estimationPeriods)
	carried := decimal.Zero

	for n, inv := range previews {
		if n >= estimationPeriods {
			break
		}

		commissionTotal := inv.CommissionsTotal()
		feeTotal := inv.FeesTotal()

		payout := types.EstimatedPayout{
			InvoiceTotal:              inv.InvoiceTotal,
			CommissionTotal:           commissionTotal,
			FeeTotal:                  feeTotal,
			AmountMovedFromLastPayout: carried,
		}
		payout.Payout = inv.InvoiceTotal.Sub(commissionTotal).Sub(feeTotal).Sub(carried)
		carried = decimal.Zero

		// A negative cycle is zeroed and its shortfall moved into the next
		// one, but never past the third period.
		if payout.Payout.IsNegative() && n < estimationPeriods-1 {
			carried = payout.Payout.Neg()
			payout.Payout = decimal.Zero
		}

		payouts = append(payouts, payout)
	}

	return payouts, nil
}

// commissionableTotal excludes addon lines that earn their own addon
// commission, so the same amount is never commissioned twice.
func commissionableTotal(inv *invoice.Invoice) decimal.Decimal {
	total := inv.RentContentTotal()
	for _, meta := range inv.AddonsMeta {
		if meta.EnableCommission && meta.IsRecurring && meta.Type == types.AddonTypeLease {
			continue
		}
		total = total.Add(meta.Total)
	}
	return total
}
