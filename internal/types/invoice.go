package types

import (
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/samber/lo"
)

// InvoiceType distinguishes tenant-facing invoices from landlord settlement
// invoices and their reversing credit notes.
type InvoiceType string

const (
	InvoiceTypeInvoice            InvoiceType = "invoice"
	InvoiceTypeCreditNote         InvoiceType = "credit_note"
	InvoiceTypeLandlordInvoice    InvoiceType = "landlord_invoice"
	InvoiceTypeLandlordCreditNote InvoiceType = "landlord_credit_note"
)

func (t InvoiceType) String() string {
	return string(t)
}

func (t InvoiceType) Validate() error {
	allowed := []InvoiceType{
		InvoiceTypeInvoice,
		InvoiceTypeCreditNote,
		InvoiceTypeLandlordInvoice,
		InvoiceTypeLandlordCreditNote,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid invoice type").
			WithHint("Please provide a valid invoice type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsCreditNote reports whether the type reverses a previously issued invoice.
func (t InvoiceType) IsCreditNote() bool {
	return t == InvoiceTypeCreditNote || t == InvoiceTypeLandlordCreditNote
}

// IsLandlord reports whether the invoice settles towards the landlord rather
// than the tenant.
func (t InvoiceType) IsLandlord() bool {
	return t == InvoiceTypeLandlordInvoice || t == InvoiceTypeLandlordCreditNote
}

// InvoiceStatus is the payment lifecycle of an invoice. `paid`, `credited`,
// `lost` and `balanced` are terminal.
type InvoiceStatus string

const (
	InvoiceStatusNew           InvoiceStatus = "new"
	InvoiceStatusCreated       InvoiceStatus = "created"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusCredited      InvoiceStatus = "credited"
	InvoiceStatusLost          InvoiceStatus = "lost"
	InvoiceStatusBalanced      InvoiceStatus = "balanced"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusNew,
		InvoiceStatusCreated,
		InvoiceStatusSent,
		InvoiceStatusOverdue,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid,
		InvoiceStatusCredited,
		InvoiceStatusLost,
		InvoiceStatusBalanced,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether an invoice in this status can no longer change
// amount-wise.
func (s InvoiceStatus) IsTerminal() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusCredited, InvoiceStatusLost, InvoiceStatusBalanced:
		return true
	}
	return false
}

// InvoiceFilter narrows invoice listing queries. A nil slice means no
// filtering on that dimension.
type InvoiceFilter struct {
	ContractID         string          `json:"contract_id,omitempty"`
	PropertyID         string          `json:"property_id,omitempty"`
	InvoiceTypes       []InvoiceType   `json:"invoice_types,omitempty"`
	Statuses           []InvoiceStatus `json:"statuses,omitempty"`
	ExcludeCorrections bool            `json:"exclude_corrections,omitempty"`
	ExcludeCancelled   bool            `json:"exclude_cancelled,omitempty"`
}

// NewPeriodInvoiceFilter returns the filter used by range reconciliation:
// real period invoices for one contract, with cancelled and correction
// invoices excluded so they never block a gap.
func NewPeriodInvoiceFilter(contractID string) *InvoiceFilter {
	return &InvoiceFilter{
		ContractID:         contractID,
		InvoiceTypes:       []InvoiceType{InvoiceTypeInvoice},
		ExcludeCorrections: true,
		ExcludeCancelled:   true,
	}
}
