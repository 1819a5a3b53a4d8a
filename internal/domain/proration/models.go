package proration

import (
	"github.com/shopspring/decimal"

	"github.com/hjemly/hjemly/internal/types"
)

// Params describes one proration computation: a monthly amount spread over a
// billable window of partner-local dates.
type Params struct {
	// PeriodStart and PeriodEnd bound the billable window, inclusive on both
	// sides.
	PeriodStart types.PartnerLocalDate
	PeriodEnd   types.PartnerLocalDate

	// MonthlyAmount is the full amount for one lease month.
	MonthlyAmount decimal.Decimal

	// DayBasis overrides the per-day denominator for windows that are not a
	// full calendar month yet represent exactly one lease month (the first
	// invoice under the prorated-second-month policy, and partial credits of
	// such invoices). Zero prorates each calendar month against its own day
	// count.
	DayBasis int

	// ChargeFull bills MonthlyAmount in full regardless of the window
	// (first-invoice-only non-recurring addons).
	ChargeFull bool
}

// MonthShare is the slice of a prorated amount that falls in one calendar
// month.
type MonthShare struct {
	Month       string          `json:"month"` // YYYY-MM
	Days        int             `json:"days"`
	DaysInMonth int             `json:"days_in_month"`
	Amount      decimal.Decimal `json:"amount"`
}

// Result is the outcome of a proration computation. The per-month shares sum
// to Total exactly; rounding happens later, at invoice assembly.
type Result struct {
	Total     decimal.Decimal `json:"total"`
	TotalDays int             `json:"total_days"`
	Months    []MonthShare    `json:"months"`
}
