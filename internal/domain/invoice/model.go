package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/types"
)

// ContentItem is a rent or correction line on an invoice.
type ContentItem struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	IsNonRent    bool            `json:"is_non_rent,omitempty"`
	CorrectionID *string         `json:"correction_id,omitempty"`
}

// AddonMeta is one addon charge on an invoice.
type AddonMeta struct {
	AddonID           string           `json:"addon_id"`
	Type              types.AddonType  `json:"type"`
	Description       string           `json:"description,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	Tax               decimal.Decimal  `json:"tax"`
	Total             decimal.Decimal  `json:"total"`
	IsRecurring       bool             `json:"is_recurring"`
	EnableCommission  bool             `json:"enable_commission"`
	CommissionPercent *decimal.Decimal `json:"commission_percent,omitempty"`
}

// FeeMeta is one penalty-fee entry. Original marks fees issued directly on
// this invoice; carried-forward entries reference the invoice they came from.
type FeeMeta struct {
	ID       string          `json:"id"`
	Type     types.FeeType   `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Original bool            `json:"original"`
	IsPaid   bool            `json:"is_paid"`
	// InvoiceID points at the invoice an unpaid fee was moved from.
	InvoiceID *string `json:"invoice_id,omitempty"`
}

// CommissionMeta is one commission/income entry computed for the invoice.
type CommissionMeta struct {
	Type    types.CommissionType `json:"type"`
	AddonID string               `json:"addon_id,omitempty"`
	Amount  decimal.Decimal      `json:"amount"`
	Tax     decimal.Decimal      `json:"tax"`
	Total   decimal.Decimal      `json:"total"`
}

// InvoiceMonth is the per-calendar-month breakdown of a multi-month invoice.
type InvoiceMonth struct {
	Month  string          `json:"month"` // YYYY-MM
	Days   int             `json:"days"`
	Amount decimal.Decimal `json:"amount"`
}

// Invoice is the invoice domain model. Credit notes share the shape, with
// negated amounts and InvoiceID pointing at the invoice they reverse.
type Invoice struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id"`
	AccountID  string `json:"account_id"`
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id,omitempty"`

	InvoiceType   types.InvoiceType   `json:"invoice_type"`
	InvoiceStatus types.InvoiceStatus `json:"invoice_status"`

	SerialNumber         int    `json:"serial_number,omitempty"`
	DisplayID            string `json:"display_id,omitempty"`
	InvoiceAccountNumber string `json:"invoice_account_number,omitempty"`
	Receiver             string `json:"receiver,omitempty"`

	InvoiceStartOn time.Time      `json:"invoice_start_on"`
	InvoiceEndOn   time.Time      `json:"invoice_end_on"`
	InvoiceMonth   time.Time      `json:"invoice_month"`
	InvoiceMonths  []InvoiceMonth `json:"invoice_months,omitempty"`
	TotalDays      int            `json:"total_days"`

	DueDate time.Time `json:"due_date"`

	IsFirstInvoice      bool `json:"is_first_invoice"`
	IsCorrectionInvoice bool `json:"is_correction_invoice"`
	IsNotFullMonth      bool `json:"is_not_full_month"`

	InvoiceContent  []ContentItem    `json:"invoice_content,omitempty"`
	AddonsMeta      []AddonMeta      `json:"addons_meta,omitempty"`
	FeesMeta        []FeeMeta        `json:"fees_meta,omitempty"`
	CommissionsMeta []CommissionMeta `json:"commissions_meta,omitempty"`

	InvoiceTotal        decimal.Decimal `json:"invoice_total"`
	RentTotal           decimal.Decimal `json:"rent_total"`
	RoundedAmount       decimal.Decimal `json:"rounded_amount"`
	CommissionableTotal decimal.Decimal `json:"commissionable_total"`
	PayoutableAmount    decimal.Decimal `json:"payoutable_amount"`
	TotalTAX            decimal.Decimal `json:"total_tax"`

	CreditedAmount      decimal.Decimal `json:"credited_amount"`
	CreditedDays        int             `json:"credited_days,omitempty"`
	IsPartiallyCredited bool            `json:"is_partially_credited"`
	FullyCredited       bool            `json:"fully_credited"`
	CreditNoteIDs       []string        `json:"credit_note_ids,omitempty"`

	// InvoiceID references the reversed invoice on credit notes.
	InvoiceID *string `json:"invoice_id,omitempty"`

	types.BaseModel
}

// RentContentTotal sums the rent lines (excluding non-rent corrections).
func (i *Invoice) RentContentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range i.InvoiceContent {
		if !c.IsNonRent {
			total = total.Add(c.Total)
		}
	}
	return total
}

// ContentTotal sums every content line including non-rent corrections.
func (i *Invoice) ContentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range i.InvoiceContent {
		total = total.Add(c.Total)
	}
	return total
}

// AddonsTotal sums the addon lines.
func (i *Invoice) AddonsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range i.AddonsMeta {
		total = total.Add(a.Total)
	}
	return total
}

// FeesTotal sums every fee entry, move-to entries included (they are
// negative, so a fully moved fee nets to zero).
func (i *Invoice) FeesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, f := range i.FeesMeta {
		total = total.Add(f.Total)
	}
	return total
}

// CommissionsTotal sums the commission entries.
func (i *Invoice) CommissionsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range i.CommissionsMeta {
		total = total.Add(c.Total)
	}
	return total
}

// UnpaidCascadableFees returns pointers into FeesMeta for the fee entries
// that should be carried forward to the next invoice of the contract.
// Callers mutating the entries must not grow FeesMeta until they are done
// with the returned pointers.
func (i *Invoice) UnpaidCascadableFees() []*FeeMeta {
	var fees []*FeeMeta
	for idx := range i.FeesMeta {
		f := &i.FeesMeta[idx]
		if !f.IsPaid && !f.Original && f.Type.IsCascadable() {
			fees = append(fees, f)
		}
	}
	return fees
}

// CreditableDays returns how many billed days are still open for crediting.
func (i *Invoice) CreditableDays() int {
	days := i.TotalDays - i.CreditedDays
	if days < 0 {
		return 0
	}
	return days
}

// PeriodKey formats the invoice period at day granularity for reconciliation
// comparisons. The string form defeats timezone rounding differences between
// persisted and freshly computed periods.
func (i *Invoice) PeriodKey() string {
	return i.InvoiceStartOn.UTC().Format("2006-01-02") + "/" + i.InvoiceEndOn.UTC().Format("2006-01-02")
}

// Validate enforces the per-type mandatory fields and amount sanity.
func (i *Invoice) Validate() error {
	if err := i.InvoiceType.Validate(); err != nil {
		return err
	}
	if i.ContractID == "" {
		return NewValidationError("contract_id", "is required")
	}
	if i.InvoiceStartOn.IsZero() || i.InvoiceEndOn.IsZero() {
		return NewValidationError("invoice_period", "start and end are required")
	}
	if i.InvoiceEndOn.Before(i.InvoiceStartOn) {
		return NewValidationError("invoice_end_on", "must not precede invoice_start_on")
	}

	switch i.InvoiceType {
	case types.InvoiceTypeInvoice, types.InvoiceTypeCreditNote:
		if i.InvoiceAccountNumber == "" {
			return NewValidationError("invoice_account_number", "is required for tenant invoices")
		}
	case types.InvoiceTypeLandlordInvoice, types.InvoiceTypeLandlordCreditNote:
		if i.Receiver == "" {
			return NewValidationError("receiver", "is required for landlord invoices")
		}
	}

	if i.InvoiceType.IsCreditNote() && i.InvoiceID == nil {
		return NewValidationError("invoice_id", "credit note must reference the invoice it reverses")
	}

	if i.CreditedAmount.Abs().GreaterThan(i.InvoiceTotal.Abs()) {
		return ierr.NewError("credited amount exceeds invoice amount").
			WithHintf("credited %s of %s", i.CreditedAmount, i.InvoiceTotal).
			Mark(ierr.ErrPolicyViolation)
	}

	return nil
}
