package contract

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/types"
)

// Contract is a lease agreement driving recurring invoice generation.
type Contract struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	PropertyID string `json:"property_id"`
	LandlordID string `json:"landlord_id,omitempty"`

	RentalMeta RentalMeta      `json:"rental_meta"`
	Addons     []ContractAddon `json:"addons,omitempty"`

	// Commission terms from the landlord's property/brokering contract.
	BrokeringTerm          types.CommissionTerm `json:"brokering_term"`
	ManagementTerm         types.CommissionTerm `json:"management_term"`
	AddonCommissionPercent decimal.Decimal      `json:"addon_commission_percent"`

	types.BaseModel
}

// RentalMeta is the lease-specific billing configuration embedded in a
// contract.
type RentalMeta struct {
	TenantID          string     `json:"tenant_id"`
	ContractStartDate time.Time  `json:"contract_start_date"`
	ContractEndDate   *time.Time `json:"contract_end_date,omitempty"`

	// InvoiceFrequency is the number of months covered by one invoice.
	// Zero means the default of one month.
	InvoiceFrequency int `json:"invoice_frequency,omitempty"`

	// DueDate is the recurring due day-of-month for invoices after the first.
	DueDate             int        `json:"due_date,omitempty"`
	FirstInvoiceDueDate *time.Time `json:"first_invoice_due_date,omitempty"`

	// InvoiceCalculation overrides the partner-level proration policy.
	InvoiceCalculation types.ProrationPolicy `json:"invoice_calculation,omitempty"`

	MonthlyRentAmount decimal.Decimal  `json:"monthly_rent_amount"`
	FutureRentAmount  *decimal.Decimal `json:"future_rent_amount,omitempty"`
	NextCpiDate       *time.Time       `json:"next_cpi_date,omitempty"`

	// InvoicedAsOn is the end date of the most recently created invoice.
	InvoicedAsOn *time.Time `json:"invoiced_as_on,omitempty"`

	IsEnabledRecurringDueDate bool                    `json:"is_enabled_recurring_due_date"`
	EstimatedPayouts          []types.EstimatedPayout `json:"estimated_payouts,omitempty"`
}

// ContractAddon is a recurring or one-off extra charge attached to a lease.
type ContractAddon struct {
	AddonID           string           `json:"addon_id"`
	Type              types.AddonType  `json:"type"`
	Price             decimal.Decimal  `json:"price"`
	IsRecurring       bool             `json:"is_recurring"`
	EnableCommission  bool             `json:"enable_commission"`
	LedgerAccountID   string           `json:"ledger_account_id,omitempty"`
	CommissionPercent *decimal.Decimal `json:"commission_percent,omitempty"`
}

// Frequency returns the number of months per invoice, defaulting to 1.
func (c *Contract) Frequency() int {
	if c.RentalMeta.InvoiceFrequency > 0 {
		return c.RentalMeta.InvoiceFrequency
	}
	return 1
}

// MonthlyRent returns the rent applying on the given date. When a CPI-driven
// rent change is scheduled and the date has reached it, the future amount
// applies.
func (c *Contract) MonthlyRent(asOf time.Time) decimal.Decimal {
	meta := c.RentalMeta
	if meta.FutureRentAmount != nil && meta.NextCpiDate != nil && !asOf.Before(*meta.NextCpiDate) {
		return *meta.FutureRentAmount
	}
	return meta.MonthlyRentAmount
}

// LeaseAddons returns the recurring lease addons billed on every invoice plus
// the non-recurring ones billed on the first invoice only.
func (c *Contract) LeaseAddons() []ContractAddon {
	var out []ContractAddon
	for _, a := range c.Addons {
		if a.Type == types.AddonTypeLease {
			out = append(out, a)
		}
	}
	return out
}

// AssignmentAddons returns the assignment-type addons booked as
// first-invoice-only income.
func (c *Contract) AssignmentAddons() []ContractAddon {
	var out []ContractAddon
	for _, a := range c.Addons {
		if a.Type == types.AddonTypeAssignment {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks the minimum shape required to generate invoices.
func (c *Contract) Validate() error {
	if c.ID == "" {
		return ierr.NewError("contract id is required").
			Mark(ierr.ErrValidation)
	}
	if c.RentalMeta.ContractStartDate.IsZero() {
		return ierr.NewError("contract start date is required").
			WithHint("A lease without a start date cannot be invoiced").
			Mark(ierr.ErrValidation)
	}
	if c.RentalMeta.ContractEndDate != nil && c.RentalMeta.ContractEndDate.Before(c.RentalMeta.ContractStartDate) {
		return ierr.NewError("contract end date precedes start date").
			Mark(ierr.ErrValidation)
	}
	if c.RentalMeta.MonthlyRentAmount.IsNegative() {
		return ierr.NewError("monthly rent must be non negative").
			Mark(ierr.ErrValidation)
	}
	if c.RentalMeta.InvoiceFrequency < 0 {
		return ierr.NewError("invoice frequency must be positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}
