package partner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hjemly/hjemly/internal/config"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/types"
)

// FeeConfig is one penalty-fee block in a partner setting.
type FeeConfig struct {
	Enabled bool            `json:"enabled"`
	Amount  decimal.Decimal `json:"amount"`
	Tax     decimal.Decimal `json:"tax"`
}

// Total returns amount plus tax.
func (f FeeConfig) Total() decimal.Decimal {
	return f.Amount.Add(f.Tax)
}

// Setting is the per-partner billing configuration.
type Setting struct {
	ID string `json:"id"`

	// Timezone is the IANA timezone all of the partner's invoice dates are
	// computed in.
	Timezone string `json:"timezone"`

	InvoiceDueDays         int `json:"invoice_due_days"`
	LandlordInvoiceDueDays int `json:"landlord_invoice_due_days"`

	// InvoiceCalculation is the partner-level default proration policy,
	// overridable per contract.
	InvoiceCalculation types.ProrationPolicy `json:"invoice_calculation,omitempty"`

	ReminderFee               FeeConfig `json:"reminder_fee"`
	CollectionNoticeFee       FeeConfig `json:"collection_notice_fee"`
	EvictionNoticeFee         FeeConfig `json:"eviction_notice_fee"`
	AdministrationEvictionFee FeeConfig `json:"administration_eviction_fee"`

	// DirectPartner marks partners invoicing in their own name. Direct
	// partners cannot issue zero-amount credit notes.
	DirectPartner bool `json:"direct_partner"`

	BankAccountNumber string `json:"bank_account_number,omitempty"`

	types.BaseModel
}

// Context is the immutable per-run view of a partner setting, resolved once
// per invoice-generation run and passed down explicitly. Location() pins
// wall-clock instants to the partner calendar; persisted day-granular dates
// are read back with types.FromUTCDay instead.
type Context struct {
	Setting *Setting

	loc            *time.Location
	policy         types.ProrationPolicy
	invoiceDueDays int
}

// NewContext resolves a partner setting against a contract-level proration
// policy and the platform defaults.
func NewContext(setting *Setting, contractPolicy types.ProrationPolicy, defaults config.BillingConfig) (*Context, error) {
	if setting == nil {
		return nil, ierr.NewError("partner setting is required").
			Mark(ierr.ErrNotFound)
	}

	tz := setting.Timezone
	if tz == "" {
		tz = defaults.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to load partner timezone '%s'", tz).
			Mark(ierr.ErrSystem)
	}

	dueDays := setting.InvoiceDueDays
	if dueDays <= 0 {
		dueDays = defaults.InvoiceDueDays
	}

	return &Context{
		Setting:        setting,
		loc:            loc,
		policy:         types.ResolveProrationPolicy(contractPolicy, setting.InvoiceCalculation),
		invoiceDueDays: dueDays,
	}, nil
}

// Location returns the partner timezone.
func (c *Context) Location() *time.Location {
	return c.loc
}

// Policy returns the effective proration policy for the contract the context
// was resolved for.
func (c *Context) Policy() types.ProrationPolicy {
	return c.policy
}

// InvoiceDueDays returns the effective gap between invoice creation and due
// date for tenant invoices.
func (c *Context) InvoiceDueDays() int {
	return c.invoiceDueDays
}

// LocalDate pins an instant to the partner timezone's calendar.
func (c *Context) LocalDate(t time.Time) types.PartnerLocalDate {
	return types.NewPartnerLocalDate(t, c.loc)
}
