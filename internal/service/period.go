package service

import (
	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/partner"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/types"
)

// InvoicePeriod is one computed billing window for a contract.
type InvoicePeriod struct {
	Start types.PartnerLocalDate
	End   types.PartnerLocalDate

	// IsNotFullMonth flags windows that do not line up with whole calendar
	// months (partial first/last months, deferred-proration first invoices).
	IsNotFullMonth bool

	// MonthDate anchors the period to its invoice month (first day).
	MonthDate types.PartnerLocalDate

	// DayBasis is the per-day rent denominator for periods that represent
	// exactly one lease month without covering a full calendar month (first
	// invoice under the prorated-second-month policy). Zero means calendar
	// proration.
	DayBasis int
}

// TotalDays returns the inclusive day count of the period.
func (p InvoicePeriod) TotalDays() int {
	return p.Start.DaysUntil(p.End)
}

// PeriodService computes a single invoice's billing window from a candidate
// calendar-month window, the contract's proration policy and the running
// count of invoices already created from the beginning of the contract.
type PeriodService interface {
	// ComputePeriod returns the billing window anchored at the given
	// calendar-month window, or nil when the window yields no billable days
	// (contract already ended before the window starts).
	//
	// prevEnd is the end date of the previous invoice in the series (the
	// contract's invoiced-as-on); it drives the second invoice start under
	// the prorated-second-month policy.
	ComputePeriod(c *contract.Contract, pctx *partner.Context, window types.PartnerLocalDate, createdCount int, prevEnd *types.PartnerLocalDate) (*InvoicePeriod, error)
}

type periodService struct {
	ServiceParams
}

func NewPeriodService(params ServiceParams) PeriodService {
	return &periodService{ServiceParams: params}
}

func (s *periodService) ComputePeriod(
	c *contract.Contract,
	pctx *partner.Context,
	window types.PartnerLocalDate,
	createdCount int,
	prevEnd *types.PartnerLocalDate,
) (*InvoicePeriod, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if createdCount < 0 {
		return nil, ierr.NewError("created invoice count must be non negative").
			Mark(ierr.ErrValidation)
	}

	freq := c.Frequency()
	leaseStart := types.FromUTCDay(c.RentalMeta.ContractStartDate)

	windowStart := window.StartOfMonth()
	windowEnd := windowStart.AddMonths(freq - 1).EndOfMonth()

	// Invoice start never precedes contract start.
	start := types.MaxDate(windowStart, leaseStart)
	end := windowEnd

	if pctx.Policy() == types.ProrationSecondMonth {
		switch createdCount {
		case 0:
			// The first invoice covers one lease month: it ends the day
			// before the start day-of-month, rolled into the next month when
			// that day does not exist, then clipped to the window.
			if endDay := leaseStart.Day() - 1; endDay > 0 {
				raw := start.AddMonths(1).WithDayRolled(endDay)
				end = types.MinDate(raw, end)
			}
		case 1:
			// The second invoice resumes the day after the first one ended
			// and runs to the end of that month.
			if prevEnd != nil {
				start = types.MaxDate(start, prevEnd.AddDays(1))
			} else if invoicedAsOn := c.RentalMeta.InvoicedAsOn; invoicedAsOn != nil {
				start = types.MaxDate(start, types.FromUTCDay(*invoicedAsOn).AddDays(1))
			}
		}
	}

	// Invoice end never exceeds contract end.
	if contractEnd := c.RentalMeta.ContractEndDate; contractEnd != nil {
		end = types.MinDate(end, types.FromUTCDay(*contractEnd))
	}

	if end.Before(start) {
		return nil, nil
	}

	period := &InvoicePeriod{
		Start:          start,
		End:            end,
		IsNotFullMonth: !start.IsStartOfMonth() || !end.IsEndOfMonth(),
		MonthDate:      start.StartOfMonth(),
	}

	// Under the deferred policy the irregular first invoice is worth exactly
	// one lease month of rent, spread over the days it covers.
	if pctx.Policy() == types.ProrationSecondMonth && createdCount == 0 && period.IsNotFullMonth {
		period.DayBasis = period.TotalDays()
	}

	return period, nil
}
