package service

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/hjemly/hjemly/internal/domain/contract"
	"github.com/hjemly/hjemly/internal/domain/invoice"
	"github.com/hjemly/hjemly/internal/domain/partner"
	"github.com/hjemly/hjemly/internal/types"
)

// estimationPeriods is how many invoice cycles the payout estimation looks
// ahead.
const estimationPeriods = 3

// DateRange is a caller-supplied preferred invoice range, used to re-derive
// invoices that were skipped by deletion.
type DateRange struct {
	Start types.PartnerLocalDate
	End   types.PartnerLocalDate
}

// ExpectedRange is one billing window the contract should have an invoice
// for, with its creation gate dates.
type ExpectedRange struct {
	Period       InvoicePeriod
	DueDate      types.PartnerLocalDate
	CreationDate types.PartnerLocalDate
	// Sequence is the position of the range counted from the beginning of
	// the contract.
	Sequence int
}

// MissingRange is a billing window with no persisted invoice: the
// authoritative "missing invoice" unit that invoice creation iterates over.
type MissingRange struct {
	Start          types.PartnerLocalDate
	End            types.PartnerLocalDate
	IsNotFullMonth bool
	DayBasis       int
	IsFirstInvoice bool
	Sequence       int
	DueDate        types.PartnerLocalDate
}

// RangeOptions tunes a reconciliation run.
type RangeOptions struct {
	// Estimation suppresses the creation-date gate and bounds the walk to
	// three invoice cycles ahead of the lease start.
	Estimation bool
	// PreferredRanges restricts the returned gaps to those overlapping the
	// given ranges (manual invoice creation).
	PreferredRanges []DateRange
	// Today overrides the current date for the creation gate. Zero uses the
	// wall clock in the partner timezone.
	Today types.PartnerLocalDate
}

// ReconciliationService builds the expected billing-period sequence of a
// contract and diffs it against persisted invoices.
type ReconciliationService interface {
	// ExpectedRanges generates the full expected sequence of billing periods
	// from lease start, honoring the creation-date gate unless estimating.
	ExpectedRanges(ctx context.Context, c *contract.Contract, pctx *partner.Context, opts RangeOptions) ([]ExpectedRange, error)

	// MissingRanges returns the ordered list of expected periods that still
	// require invoice creation. It must be called inside the transactional
	// session used for the eventual write: the persisted invoices are
	// re-read here so two concurrent runs cannot both see the same gap.
	MissingRanges(ctx context.Context, c *contract.Contract, pctx *partner.Context, opts RangeOptions) ([]MissingRange, error)
}

type reconciliationService struct {
	ServiceParams
	periods PeriodService
}

func NewReconciliationService(params ServiceParams) ReconciliationService {
	return &reconciliationService{
		ServiceParams: params,
		periods:       NewPeriodService(params),
	}
}

func (s *reconciliationService) ExpectedRanges(
	ctx context.Context,
	c *contract.Contract,
	pctx *partner.Context,
	opts RangeOptions,
) ([]ExpectedRange, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	freq := c.Frequency()
	leaseStart := types.FromUTCDay(c.RentalMeta.ContractStartDate)

	today := opts.Today
	if today.IsZero() {
		today = pctx.LocalDate(time.Now())
	}

	var horizon *types.PartnerLocalDate
	if contractEnd := c.RentalMeta.ContractEndDate; contractEnd != nil {
		end := types.FromUTCDay(*contractEnd)
		horizon = &end
	}
	if opts.Estimation {
		// Exactly freq*3 - 1 months ahead: three invoice cycles.
		end := leaseStart.StartOfMonth().AddMonths(freq*estimationPeriods - 1).EndOfMonth()
		if horizon == nil || end.Before(*horizon) {
			horizon = &end
		}
	}

	var (
		ranges  []ExpectedRange
		prevEnd *types.PartnerLocalDate
		count   int
	)

	for window := leaseStart.StartOfMonth(); ; window = window.AddMonths(freq) {
		if horizon != nil && window.After(*horizon) {
			break
		}

		period, err := s.periods.ComputePeriod(c, pctx, window, count, prevEnd)
		if err != nil {
			return nil, err
		}
		if period == nil {
			break
		}

		dueDate := s.dueDateFor(c, pctx, *period, count)
		creationDate := dueDate.SubDays(pctx.InvoiceDueDays())

		// Ranges whose creation date is still in the future are not due yet.
		// Later windows are even further out, so stop walking.
		if !opts.Estimation && creationDate.After(today) {
			break
		}

		ranges = append(ranges, ExpectedRange{
			Period:       *period,
			DueDate:      dueDate,
			CreationDate: creationDate,
			Sequence:     count,
		})

		end := period.End
		prevEnd = &end
		count++

		if horizon != nil && !period.End.Before(*horizon) {
			break
		}
	}

	return ranges, nil
}

func (s *reconciliationService) MissingRanges(
	ctx context.Context,
	c *contract.Contract,
	pctx *partner.Context,
	opts RangeOptions,
) ([]MissingRange, error) {
	expected, err := s.ExpectedRanges(ctx, c, pctx, opts)
	if err != nil {
		return nil, err
	}
	if len(expected) == 0 {
		return nil, nil
	}

	persisted, err := s.InvoiceRepo.List(ctx, types.NewPeriodInvoiceFilter(c.ID))
	if err != nil {
		return nil, err
	}

	var gaps []MissingRange
	for _, er := range expected {
		for _, segment := range subtractPersisted(er.Period, persisted) {
			gaps = append(gaps, MissingRange{
				Start:          segment.Start,
				End:            segment.End,
				IsNotFullMonth: er.Period.IsNotFullMonth || !segment.Start.Equal(er.Period.Start) || !segment.End.Equal(er.Period.End),
				DayBasis:       er.Period.DayBasis,
				Sequence:       er.Sequence,
				DueDate:        er.DueDate,
			})
		}
	}

	// Only the very first gap of a contract with no invoices at all is the
	// first invoice.
	if len(persisted) == 0 && len(gaps) > 0 {
		gaps[0].IsFirstInvoice = true
	}

	if len(opts.PreferredRanges) > 0 {
		gaps = intersectPreferred(gaps, opts.PreferredRanges)
	}

	// Periods wholly inside a finalized annual statement year are
	// financially closed and must not be re-invoiced.
	closedYear, err := s.StatementRepo.LatestClosedYear(ctx, c.PartnerID, c.AccountID)
	if err != nil {
		return nil, err
	}
	if closedYear > 0 {
		gaps = lo.Filter(gaps, func(g MissingRange, _ int) bool {
			return g.End.Year() > closedYear
		})
	}

	gaps = dedupeGaps(gaps)
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Start.Before(gaps[j].Start)
	})

	return gaps, nil
}

// dueDateFor resolves the due date of an expected period: the explicit first
// invoice due date, the recurring due day-of-month when enabled, else period
// start plus partner due days.
func (s *reconciliationService) dueDateFor(
	c *contract.Contract,
	pctx *partner.Context,
	period InvoicePeriod,
	count int,
) types.PartnerLocalDate {
	if count == 0 && c.RentalMeta.FirstInvoiceDueDate != nil {
		return types.FromUTCDay(*c.RentalMeta.FirstInvoiceDueDate)
	}
	if c.RentalMeta.IsEnabledRecurringDueDate && c.RentalMeta.DueDate > 0 {
		return period.Start.StartOfMonth().WithDay(c.RentalMeta.DueDate)
	}
	return period.Start.AddDays(pctx.InvoiceDueDays())
}

// subtractPersisted removes every persisted invoice period from the expected
// window and returns the remaining segments. Stored boundaries are read back
// at UTC day granularity, the same granularity they were persisted at, so a
// partner timezone west of UTC cannot shift them a day early and open a
// phantom gap.
func subtractPersisted(period InvoicePeriod, persisted []*invoice.Invoice) []DateRange {
	remaining := []DateRange{{Start: period.Start, End: period.End}}
	expectedKey := period.Start.Format("2006-01-02") + "/" + period.End.Format("2006-01-02")

	for _, inv := range persisted {
		pStart := types.FromUTCDay(inv.InvoiceStartOn)
		pEnd := types.FromUTCDay(inv.InvoiceEndOn)

		// Exact match on the string form satisfies the whole window even
		// when the day-granular dates drifted across a timezone boundary.
		if inv.PeriodKey() == expectedKey {
			return nil
		}

		var next []DateRange
		for _, seg := range remaining {
			next = append(next, subtractRange(seg, DateRange{Start: pStart, End: pEnd})...)
		}
		remaining = next
		if len(remaining) == 0 {
			break
		}
	}

	return remaining
}

// subtractRange removes the overlap of b from a, keeping up to two remainder
// segments clipped to a's boundaries.
func subtractRange(a, b DateRange) []DateRange {
	if b.End.Before(a.Start) || b.Start.After(a.End) {
		return []DateRange{a}
	}

	var out []DateRange
	if b.Start.After(a.Start) {
		out = append(out, DateRange{Start: a.Start, End: b.Start.SubDays(1)})
	}
	if b.End.Before(a.End) {
		out = append(out, DateRange{Start: b.End.AddDays(1), End: a.End})
	}
	return out
}

// intersectPreferred clips the computed gaps to the caller-supplied preferred
// ranges.
func intersectPreferred(gaps []MissingRange, preferred []DateRange) []MissingRange {
	var out []MissingRange
	for _, gap := range gaps {
		for _, pref := range preferred {
			start := types.MaxDate(gap.Start, pref.Start)
			end := types.MinDate(gap.End, pref.End)
			if end.Before(start) {
				continue
			}
			clipped := gap
			clipped.Start = start
			clipped.End = end
			if !start.Equal(gap.Start) || !end.Equal(gap.End) {
				clipped.IsNotFullMonth = true
			}
			out = append(out, clipped)
		}
	}
	return out
}

func dedupeGaps(gaps []MissingRange) []MissingRange {
	return lo.UniqBy(gaps, func(g MissingRange) string {
		return g.Start.String() + "/" + g.End.String()
	})
}
