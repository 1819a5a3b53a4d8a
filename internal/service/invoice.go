package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/correction"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/domain/proration"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/types"
)

// GenerateRequest asks for creation of every missing invoice of a contract.
type GenerateRequest struct {
	ContractID      string `validate:"required"`
	PreferredRanges []DateRange
	// Today overrides the current date for the creation gate (tests).
	Today types.PartnerLocalDate
}

// PreviewRequest computes the missing invoices without persisting anything.
type PreviewRequest struct {
	ContractID      string `validate:"required"`
	PreferredRanges []DateRange
	// Estimation bypasses the creation-date gate and bounds the walk to
	// three invoice cycles.
	Estimation bool
	Today      types.PartnerLocalDate
}

// InvoiceService owns the invoice assembly pipeline: reconciliation, rent and
// addon proration, correction folding, fee cascade, commissions, totals and
// rounding.
type InvoiceService interface {
	// GenerateInvoices creates one invoice per missing range of the
	// contract, in order, inside a single transaction. Returns the created
	// invoices.
	GenerateInvoices(ctx context.Context, req GenerateRequest) ([]*invoice.Invoice, error)

	// PreviewInvoices returns the fully-computed, not-yet-persisted invoice
	// payloads for the contract's missing ranges.
	PreviewInvoices(ctx context.Context, req PreviewRequest) ([]*invoice.Invoice, error)

	// GetInvoice retrieves a single invoice by ID.
	GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error)

	// ListInvoices retrieves invoices matching the filter, ordered by period
	// start.
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error)
}

type invoiceService struct {
	ServiceParams
	reconciliation ReconciliationService
	feeCascade     FeeCascadeService
	commissions    CommissionService
	calculator     proration.Calculator
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams:  params,
		reconciliation: NewReconciliationService(params),
		feeCascade:     NewFeeCascadeService(params),
		commissions:    NewCommissionService(params),
		calculator:     proration.NewCalculator(),
	}
}

func (s *invoiceService) GenerateInvoices(ctx context.Context, req GenerateRequest) ([]*invoice.Invoice, error) {
	var created []*invoice.Invoice

	err := s.DB.WithTx(ctx, func(tx context.Context) error {
		c, pctx, err := s.resolveContract(tx, req.ContractID)
		if err != nil {
			return err
		}

		// The gap list and the writes below share one transactional session;
		// that is what makes re-running after a failed attempt reproduce the
		// same missing list instead of duplicating invoices.
		gaps, err := s.reconciliation.MissingRanges(tx, c, pctx, RangeOptions{
			PreferredRanges: req.PreferredRanges,
			Today:           req.Today,
		})
		if err != nil {
			return err
		}
		if len(gaps) == 0 {
			return nil
		}

		persistedCount, err := s.InvoiceRepo.Count(tx, types.NewPeriodInvoiceFilter(c.ID))
		if err != nil {
			return err
		}

		// The payout estimation must run before the first invoice is
		// persisted, otherwise the first cycle would no longer be a gap.
		var estimated []types.EstimatedPayout
		if gaps[0].IsFirstInvoice {
			estimated, err = s.commissions.EstimatePayouts(tx, c, pctx)
			if err != nil {
				return err
			}
		}

		for i, gap := range gaps {
			inv, modified, corrections, err := s.assemble(tx, c, pctx, gap, assembleOptions{persist: true})
			if err != nil {
				return err
			}

			serial, err := s.SerialNumbers.Next(tx, serialScope(c.PartnerID, inv.InvoiceType))
			if err != nil {
				return err
			}
			inv.SerialNumber = serial

			if err := inv.Validate(); err != nil {
				return err
			}
			if err := s.InvoiceRepo.Create(tx, inv); err != nil {
				return err
			}
			for _, old := range modified {
				if err := s.InvoiceRepo.Update(tx, old); err != nil {
					return err
				}
			}
			for _, corr := range corrections {
				corr.Invoiced = true
				corr.InvoiceID = lo.ToPtr(inv.ID)
				if err := s.CorrectionRepo.Update(tx, corr); err != nil {
					return err
				}
			}

			created = append(created, inv)

			s.Logger.Infow("created invoice",
				"contract_id", c.ID,
				"invoice_id", inv.ID,
				"period_start", gap.Start.String(),
				"period_end", gap.End.String(),
				"sequence", persistedCount+i)
		}

		return s.updateContractAfterCreation(tx, c, created, estimated)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *invoiceService) PreviewInvoices(ctx context.Context, req PreviewRequest) ([]*invoice.Invoice, error) {
	c, pctx, err := s.resolveContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	gaps, err := s.reconciliation.MissingRanges(ctx, c, pctx, RangeOptions{
		Estimation:      req.Estimation,
		PreferredRanges: req.PreferredRanges,
		Today:           req.Today,
	})
	if err != nil {
		return nil, err
	}

	previews := make([]*invoice.Invoice, 0, len(gaps))
	for _, gap := range gaps {
		inv, _, _, err := s.assemble(ctx, c, pctx, gap, assembleOptions{})
		if err != nil {
			return nil, err
		}
		previews = append(previews, inv)
	}

	return previews, nil
}

type assembleOptions struct {
	// persist marks a real creation run: the fee cascade may mutate prior
	// invoices and pending corrections are consumed.
	persist bool
}

// assemble builds one fully-computed invoice for a missing range. It returns
// the invoice, the prior invoices modified by the fee cascade, and the
// corrections folded into the invoice.
func (s *invoiceService) assemble(
	ctx context.Context,
	c *contract.Contract,
	pctx *partner.Context,
	gap MissingRange,
	opts assembleOptions,
) (*invoice.Invoice, []*invoice.Invoice, []*correction.Correction, error) {
	inv := &invoice.Invoice{
		ID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		DisplayID:            types.GenerateShortIDWithPrefix("IN-"),
		ContractID:           c.ID,
		AccountID:            c.AccountID,
		PropertyID:           c.PropertyID,
		TenantID:             c.RentalMeta.TenantID,
		InvoiceType:          types.InvoiceTypeInvoice,
		InvoiceStatus:        types.InvoiceStatusCreated,
		InvoiceAccountNumber: pctx.Setting.BankAccountNumber,
		InvoiceStartOn:       gap.Start.UTCDay(),
		InvoiceEndOn:         gap.End.UTCDay(),
		InvoiceMonth:         gap.Start.StartOfMonth().UTCDay(),
		TotalDays:            gap.Start.DaysUntil(gap.End),
		DueDate:              gap.DueDate.UTCDay(),
		IsFirstInvoice:       gap.IsFirstInvoice,
		IsNotFullMonth:       gap.IsNotFullMonth,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
	inv.PartnerID = c.PartnerID

	// Rent line.
	monthlyRent := c.MonthlyRent(gap.Start.Time())
	rentResult, err := s.calculator.Calculate(ctx, proration.Params{
		PeriodStart:   gap.Start,
		PeriodEnd:     gap.End,
		MonthlyAmount: monthlyRent,
		DayBasis:      gap.DayBasis,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	inv.InvoiceContent = append(inv.InvoiceContent, invoice.ContentItem{
		Description: fmt.Sprintf("Rent %s - %s", gap.Start, gap.End),
		Amount:      rentResult.Total,
		Total:       rentResult.Total,
	})
	inv.InvoiceMonths = lo.Map(rentResult.Months, func(m proration.MonthShare, _ int) invoice.InvoiceMonth {
		return invoice.InvoiceMonth{Month: m.Month, Days: m.Days, Amount: m.Amount}
	})

	// Addon lines.
	if err := s.addAddons(ctx, c, pctx, gap, inv); err != nil {
		return nil, nil, nil, err
	}

	// Pending corrections targeted at the rent invoice.
	corrections, err := s.addCorrections(ctx, c, inv)
	if err != nil {
		return nil, nil, nil, err
	}

	// Unpaid fee cascade from prior invoices.
	modified, err := s.feeCascade.CarryForward(ctx, c.ID, inv)
	if err != nil {
		return nil, nil, nil, err
	}

	// Commissions need rent/addon totals, so they come last.
	commissions, err := s.commissions.ComputeCommissions(ctx, c, inv)
	if err != nil {
		return nil, nil, nil, err
	}
	inv.CommissionsMeta = commissions

	if err := finalizeInvoiceTotals(inv, pctx, s.Config.Billing.RoundingEnabled); err != nil {
		return nil, nil, nil, err
	}

	if !opts.persist {
		return inv, nil, nil, nil
	}
	return inv, modified, corrections, nil
}

func (s *invoiceService) addAddons(
	ctx context.Context,
	c *contract.Contract,
	pctx *partner.Context,
	gap MissingRange,
	inv *invoice.Invoice,
) error {
	for _, addon := range c.LeaseAddons() {
		if !addon.IsRecurring && !inv.IsFirstInvoice {
			continue
		}

		var amount decimal.Decimal
		if !addon.IsRecurring {
			// First-invoice-only addons are charged in full regardless of
			// the day count.
			result, err := s.calculator.Calculate(ctx, proration.Params{
				PeriodStart:   gap.Start,
				PeriodEnd:     gap.End,
				MonthlyAmount: addon.Price,
				ChargeFull:    true,
			})
			if err != nil {
				return err
			}
			amount = result.Total
		} else {
			result, err := s.calculator.Calculate(ctx, proration.Params{
				PeriodStart:   gap.Start,
				PeriodEnd:     gap.End,
				MonthlyAmount: addon.Price,
				DayBasis:      gap.DayBasis,
			})
			if err != nil {
				return err
			}
			amount = result.Total
		}

		tax, err := s.resolveAddonTax(ctx, addon, amount)
		if err != nil {
			return err
		}

		inv.AddonsMeta = append(inv.AddonsMeta, invoice.AddonMeta{
			AddonID:           addon.AddonID,
			Type:              addon.Type,
			Amount:            amount,
			Tax:               tax,
			Total:             amount.Add(tax),
			IsRecurring:       addon.IsRecurring,
			EnableCommission:  addon.EnableCommission,
			CommissionPercent: addon.CommissionPercent,
		})
	}
	return nil
}

// resolveAddonTax routes the addon through its ledger account's tax code.
// Addons without a ledger account are tax free.
func (s *invoiceService) resolveAddonTax(
	ctx context.Context,
	addon contract.ContractAddon,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	if addon.LedgerAccountID == "" {
		return decimal.Zero, nil
	}
	account, err := s.TaxRepo.GetLedgerAccount(ctx, addon.LedgerAccountID)
	if err != nil {
		return decimal.Zero, err
	}
	if account.TaxCodeID == "" {
		return decimal.Zero, nil
	}
	code, err := s.TaxRepo.GetTaxCode(ctx, account.TaxCodeID)
	if err != nil {
		return decimal.Zero, err
	}
	return code.Apply(amount), nil
}

func (s *invoiceService) addCorrections(
	ctx context.Context,
	c *contract.Contract,
	inv *invoice.Invoice,
) ([]*correction.Correction, error) {
	pending, err := s.CorrectionRepo.Find(ctx, &correction.Filter{
		ContractID:  c.ID,
		PendingOnly: true,
	})
	if err != nil {
		return nil, err
	}

	var folded []*correction.Correction
	for _, corr := range pending {
		if corr.AddTo != types.CorrectionAddToRentInvoice {
			continue
		}
		inv.InvoiceContent = append(inv.InvoiceContent, invoice.ContentItem{
			Description:  "Correction",
			Amount:       corr.Amount,
			Tax:          corr.Tax,
			Total:        corr.Amount.Add(corr.Tax),
			IsNonRent:    corr.IsNonRent,
			CorrectionID: lo.ToPtr(corr.ID),
		})
		for _, addon := range corr.Addons {
			inv.AddonsMeta = append(inv.AddonsMeta, invoice.AddonMeta{
				AddonID:          addon.AddonID,
				Type:             types.AddonTypeLease,
				Amount:           addon.Amount,
				Tax:              addon.Tax,
				Total:            addon.Amount.Add(addon.Tax),
				IsRecurring:      true,
				EnableCommission: addon.EnableCommission,
			})
		}
		folded = append(folded, corr)
	}

	return folded, nil
}

// finalizeInvoiceTotals applies the invoice-level sums, rounding and business
// constraints shared by invoices and credit notes.
func finalizeInvoiceTotals(inv *invoice.Invoice, pctx *partner.Context, roundingEnabled bool) error {
	inv.RentTotal = inv.RentContentTotal()

	total := inv.ContentTotal().
		Add(inv.AddonsTotal()).
		Add(inv.FeesTotal())

	// Landlord invoices settle the commission along with the rent.
	if inv.InvoiceType.IsLandlord() {
		total = total.Add(inv.CommissionsTotal())
	}

	// Rounding to whole currency units applies to tenant invoices and
	// credit notes only; the residual is carried on the invoice.
	if roundingEnabled &&
		(inv.InvoiceType == types.InvoiceTypeInvoice || inv.InvoiceType == types.InvoiceTypeCreditNote) {
		rounded := total.Round(0)
		inv.RoundedAmount = rounded.Sub(total)
		inv.InvoiceTotal = rounded
	} else {
		inv.RoundedAmount = decimal.Zero
		inv.InvoiceTotal = total
	}

	tax := decimal.Zero
	for _, item := range inv.InvoiceContent {
		tax = tax.Add(item.Tax)
	}
	for _, meta := range inv.AddonsMeta {
		tax = tax.Add(meta.Tax)
	}
	for _, fee := range inv.FeesMeta {
		tax = tax.Add(fee.Tax)
	}
	inv.TotalTAX = tax

	inv.CommissionableTotal = commissionableTotal(inv)
	inv.PayoutableAmount = inv.InvoiceTotal.Sub(inv.CommissionsTotal())

	// Direct partners invoice in their own name; a zero-amount credit note
	// would be rejected by their accounting systems.
	if inv.InvoiceType.IsCreditNote() && inv.InvoiceTotal.IsZero() && pctx.Setting.DirectPartner {
		return ierr.NewError("zero amount credit note").
			WithHint("Credit notes must not be zero for direct partners").
			Mark(ierr.ErrPolicyViolation)
	}

	return nil
}

// updateContractAfterCreation advances the contract's invoiced-as-on marker
// and, on the first invoice, stores the three-cycle payout estimation.
func (s *invoiceService) updateContractAfterCreation(
	ctx context.Context,
	c *contract.Contract,
	created []*invoice.Invoice,
	estimated []types.EstimatedPayout,
) error {
	if len(created) == 0 {
		return nil
	}

	last := created[len(created)-1]
	endOn := last.InvoiceEndOn
	c.RentalMeta.InvoicedAsOn = &endOn

	if len(estimated) > 0 {
		c.RentalMeta.EstimatedPayouts = estimated
	}

	// A CPI-driven rent change that has come into effect is folded into the
	// base rent so future invoices no longer consult the future amount.
	if c.RentalMeta.NextCpiDate != nil && !last.InvoiceStartOn.Before(*c.RentalMeta.NextCpiDate) &&
		c.RentalMeta.FutureRentAmount != nil {
		c.RentalMeta.MonthlyRentAmount = *c.RentalMeta.FutureRentAmount
		c.RentalMeta.FutureRentAmount = nil
		c.RentalMeta.NextCpiDate = nil
	}

	return s.ContractRepo.Update(ctx, c)
}

func (s *invoiceService) resolveContract(ctx context.Context, contractID string) (*contract.Contract, *partner.Context, error) {
	return resolveContractContext(ctx, s.ServiceParams, contractID)
}

// resolveContractContext loads the contract and resolves the immutable
// partner context once per generation run.
func resolveContractContext(ctx context.Context, s ServiceParams, contractID string) (*contract.Contract, *partner.Context, error) {
	if contractID == "" {
		return nil, nil, ierr.NewError("contract id is required").
			Mark(ierr.ErrValidation)
	}

	c, err := s.ContractRepo.Get(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, ierr.NewError("contract not found").
			WithHintf("no contract with id %s", contractID).
			Mark(ierr.ErrNotFound)
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	setting, err := s.PartnerRepo.GetByPartnerID(ctx, c.PartnerID)
	if err != nil {
		return nil, nil, err
	}

	pctx, err := partner.NewContext(setting, c.RentalMeta.InvoiceCalculation, s.Config.Billing)
	if err != nil {
		return nil, nil, err
	}

	return c, pctx, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("no invoice with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return s.InvoiceRepo.List(ctx, filter)
}

func serialScope(partnerID string, invoiceType types.InvoiceType) string {
	return partnerID + ":" + invoiceType.String()
}
