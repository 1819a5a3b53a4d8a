package types

import (
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/samber/lo"
)

// ProrationPolicy decides which invoice of a lease absorbs the partial month
// when the contract does not start on the first of a month.
type ProrationPolicy string

const (
	// ProrationFirstMonth bills the partial month on the first invoice: the
	// first invoice runs from the contract start date to the end of that
	// calendar month, all later invoices are full months.
	ProrationFirstMonth ProrationPolicy = "prorated_first_month"
	// ProrationSecondMonth defers the irregularity one invoice: the first
	// invoice ends at start-day-of-month minus one (rolled into the next
	// month when that day does not exist), the second invoice starts the day
	// after the first ended and runs to the end of that month.
	ProrationSecondMonth ProrationPolicy = "prorated_second_month"
)

func (p ProrationPolicy) String() string {
	return string(p)
}

func (p ProrationPolicy) Validate() error {
	allowed := []ProrationPolicy{
		ProrationFirstMonth,
		ProrationSecondMonth,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid proration policy").
			WithHint("Please provide a valid invoice calculation policy").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ResolveProrationPolicy picks the effective policy for a contract: the
// contract-level override wins, then the partner default, then
// ProrationFirstMonth. Both inputs may be empty.
func ResolveProrationPolicy(contractPolicy, partnerPolicy ProrationPolicy) ProrationPolicy {
	if contractPolicy.Validate() == nil {
		return contractPolicy
	}
	if partnerPolicy.Validate() == nil {
		return partnerPolicy
	}
	return ProrationFirstMonth
}
