package tax

import (
	"github.com/shopspring/decimal"
)

// TaxCode resolves to a percentage applied on top of net amounts.
type TaxCode struct {
	ID      string          `json:"id"`
	Percent decimal.Decimal `json:"percent"` // 0-100
}

// Apply returns the tax amount for a net base.
func (t TaxCode) Apply(base decimal.Decimal) decimal.Decimal {
	return base.Mul(t.Percent).Div(decimal.NewFromInt(100))
}

// LedgerAccount routes a charge to bookkeeping and carries its tax code.
type LedgerAccount struct {
	ID        string `json:"id"`
	TaxCodeID string `json:"tax_code_id"`
}
