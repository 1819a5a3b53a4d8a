package proration

import (
	"context"

	"github.com/shopspring/decimal"

	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/types"
)

// Calculator converts a monthly amount into a day-prorated amount for a
// billable window.
type Calculator interface {
	Calculate(ctx context.Context, params Params) (*Result, error)
}

// NewCalculator creates the day-based proration calculator.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// dayBasedCalculator prorates per calendar month: every month inside the
// window is prorated independently against its own day count, clipped to the
// window. A single flat day-ratio across a multi-month window would bias
// months of different lengths, so it is never used.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) Calculate(ctx context.Context, params Params) (*Result, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	totalDays := params.PeriodStart.DaysUntil(params.PeriodEnd)

	if params.ChargeFull {
		return &Result{
			Total:     params.MonthlyAmount,
			TotalDays: totalDays,
			Months: []MonthShare{{
				Month:       params.PeriodStart.MonthKey(),
				Days:        totalDays,
				DaysInMonth: params.PeriodStart.DaysInMonth(),
				Amount:      params.MonthlyAmount,
			}},
		}, nil
	}

	if params.DayBasis > 0 {
		return c.calculateWithBasis(params, totalDays)
	}

	result := &Result{
		Total:     decimal.Zero,
		TotalDays: totalDays,
	}

	for _, seg := range splitByCalendarMonth(params.PeriodStart, params.PeriodEnd) {
		daysInMonth := decimal.NewFromInt(int64(seg.daysInMonth))
		amount := params.MonthlyAmount.
			Mul(decimal.NewFromInt(int64(seg.days))).
			Div(daysInMonth)

		result.Months = append(result.Months, MonthShare{
			Month:       seg.month,
			Days:        seg.days,
			DaysInMonth: seg.daysInMonth,
			Amount:      amount,
		})
		result.Total = result.Total.Add(amount)
	}

	return result, nil
}

// calculateWithBasis spreads the monthly amount over an explicit day basis.
// Used when the window represents exactly one lease month that does not line
// up with a calendar month: each billed day is worth monthly/basis.
func (c *dayBasedCalculator) calculateWithBasis(params Params, totalDays int) (*Result, error) {
	perDay := params.MonthlyAmount.Div(decimal.NewFromInt(int64(params.DayBasis)))

	result := &Result{
		Total:     decimal.Zero,
		TotalDays: totalDays,
	}

	for _, seg := range splitByCalendarMonth(params.PeriodStart, params.PeriodEnd) {
		amount := perDay.Mul(decimal.NewFromInt(int64(seg.days)))
		result.Months = append(result.Months, MonthShare{
			Month:       seg.month,
			Days:        seg.days,
			DaysInMonth: seg.daysInMonth,
			Amount:      amount,
		})
		result.Total = result.Total.Add(amount)
	}

	return result, nil
}

type monthSegment struct {
	month       string
	days        int
	daysInMonth int
}

// splitByCalendarMonth clips the window to each calendar month it touches.
func splitByCalendarMonth(start, end types.PartnerLocalDate) []monthSegment {
	var segments []monthSegment

	cursor := start
	for !cursor.After(end) {
		segEnd := types.MinDate(cursor.EndOfMonth(), end)
		segments = append(segments, monthSegment{
			month:       cursor.MonthKey(),
			days:        cursor.DaysUntil(segEnd),
			daysInMonth: cursor.DaysInMonth(),
		})
		cursor = segEnd.AddDays(1)
	}

	return segments
}

func validateParams(params Params) error {
	if params.PeriodStart.IsZero() || params.PeriodEnd.IsZero() {
		return ierr.NewError("billable window is required").
			WithHint("Both period start and end dates must be set").
			Mark(ierr.ErrValidation)
	}
	if params.PeriodEnd.Before(params.PeriodStart) {
		return ierr.NewError("invalid billable window").
			WithHintf("period end %s precedes period start %s", params.PeriodEnd, params.PeriodStart).
			Mark(ierr.ErrValidation)
	}
	if params.MonthlyAmount.IsNegative() {
		return ierr.NewError("monthly amount must be non negative").
			Mark(ierr.ErrValidation)
	}
	if params.DayBasis < 0 {
		return ierr.NewError("day basis must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
