package correction

import (
	"github.com/shopspring/decimal"

	"github.com/hjemly/hjemly/internal/types"
)

// CorrectionAddon is an addon adjustment inside a correction, with its own
// commission eligibility.
type CorrectionAddon struct {
	AddonID          string          `json:"addon_id"`
	Amount           decimal.Decimal `json:"amount"`
	Tax              decimal.Decimal `json:"tax"`
	EnableCommission bool            `json:"enable_commission"`
}

// Correction is a non-invoiced adjustment tied to a contract/property. When
// AddTo is rent_invoice it is folded into the next generated invoice;
// payout corrections settle directly against the landlord payout.
type Correction struct {
	ID         string `json:"id"`
	ContractID string `json:"contract_id"`
	PropertyID string `json:"property_id"`

	AddTo     types.CorrectionAddTo `json:"add_to"`
	IsNonRent bool                  `json:"is_non_rent"`

	Amount decimal.Decimal   `json:"amount"`
	Tax    decimal.Decimal   `json:"tax"`
	Addons []CorrectionAddon `json:"addons,omitempty"`

	// Invoiced flips once the correction has been folded into an invoice.
	Invoiced  bool    `json:"invoiced"`
	InvoiceID *string `json:"invoice_id,omitempty"`

	types.BaseModel
}

// Total returns amount plus tax plus addon totals.
func (c *Correction) Total() decimal.Decimal {
	total := c.Amount.Add(c.Tax)
	for _, a := range c.Addons {
		total = total.Add(a.Amount).Add(a.Tax)
	}
	return total
}
