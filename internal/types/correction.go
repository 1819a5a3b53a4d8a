package types

import (
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/samber/lo"
)

// CorrectionAddTo decides where a non-invoiced adjustment is settled: folded
// into the next rent invoice, or applied directly to the landlord payout.
type CorrectionAddTo string

const (
	CorrectionAddToRentInvoice CorrectionAddTo = "rent_invoice"
	CorrectionAddToPayout      CorrectionAddTo = "payout"
)

func (c CorrectionAddTo) String() string {
	return string(c)
}

func (c CorrectionAddTo) Validate() error {
	allowed := []CorrectionAddTo{
		CorrectionAddToRentInvoice,
		CorrectionAddToPayout,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid correction target").
			WithHint("Please provide a valid correction target").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AddonType distinguishes recurring lease addons (parking, utilities) from
// one-off assignment addons billed as first-invoice income.
type AddonType string

const (
	AddonTypeLease      AddonType = "lease"
	AddonTypeAssignment AddonType = "assignment"
)

func (a AddonType) String() string {
	return string(a)
}

func (a AddonType) Validate() error {
	allowed := []AddonType{AddonTypeLease, AddonTypeAssignment}
	if !lo.Contains(allowed, a) {
		return ierr.NewError("invalid addon type").
			WithHint("Please provide a valid addon type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
