package types

import (
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CommissionType identifies an income entry computed for the agent/landlord
// side of an invoice.
type CommissionType string

const (
	CommissionTypeBrokering             CommissionType = "brokering_commission"
	CommissionTypeRentalManagement      CommissionType = "rental_management_commission"
	CommissionTypeAddon                 CommissionType = "addon_commission"
	CommissionTypeAssignmentAddonIncome CommissionType = "assignment_addon_income"
)

func (t CommissionType) String() string {
	return string(t)
}

func (t CommissionType) Validate() error {
	allowed := []CommissionType{
		CommissionTypeBrokering,
		CommissionTypeRentalManagement,
		CommissionTypeAddon,
		CommissionTypeAssignmentAddonIncome,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid commission type").
			WithHint("Please provide a valid commission type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CommissionBasis selects between a flat amount and a percentage of a base.
type CommissionBasis string

const (
	CommissionBasisFixed   CommissionBasis = "fixed"
	CommissionBasisPercent CommissionBasis = "percent"
)

// CommissionTerm is one commission rule from the landlord's property or
// brokering contract.
type CommissionTerm struct {
	Basis   CommissionBasis `json:"basis"`
	Amount  decimal.Decimal `json:"amount"`  // used when Basis == fixed
	Percent decimal.Decimal `json:"percent"` // used when Basis == percent, 0-100
}

// IsSet reports whether the term carries a usable rule.
func (t CommissionTerm) IsSet() bool {
	switch t.Basis {
	case CommissionBasisFixed:
		return t.Amount.GreaterThan(decimal.Zero)
	case CommissionBasisPercent:
		return t.Percent.GreaterThan(decimal.Zero)
	}
	return false
}

// Apply resolves the term against a base amount.
func (t CommissionTerm) Apply(base decimal.Decimal) decimal.Decimal {
	switch t.Basis {
	case CommissionBasisFixed:
		return t.Amount
	case CommissionBasisPercent:
		return base.Mul(t.Percent).Div(decimal.NewFromInt(100))
	}
	return decimal.Zero
}

// EstimatedPayout is a forward-looking projection of a single invoice cycle's
// net landlord payment. The first three cycles of a contract are estimated;
// when a cycle comes out negative the shortfall is carried into the next one.
type EstimatedPayout struct {
	InvoiceTotal              decimal.Decimal `json:"invoice_total"`
	CommissionTotal           decimal.Decimal `json:"commission_total"`
	FeeTotal                  decimal.Decimal `json:"fee_total"`
	Payout                    decimal.Decimal `json:"payout"`
	AmountMovedFromLastPayout decimal.Decimal `json:"amount_moved_from_last_payout"`
}
