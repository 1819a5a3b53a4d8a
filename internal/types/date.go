package types

import (
	"fmt"
	"time"
)

// PartnerLocalDate is an immutable wall-clock date pinned to a partner
// timezone. Every date computation in the billing engine goes through this
// type; raw time.Time values only appear at repository boundaries where
// instants are stored in UTC. Mixing raw and partner-local dates is the
// primary source of off-by-one-day defects, so conversions are explicit.
type PartnerLocalDate struct {
	year  int
	month time.Month
	day   int
	loc   *time.Location
}

// NewPartnerLocalDate interprets the given instant in the partner timezone
// and keeps only its calendar date.
func NewPartnerLocalDate(t time.Time, loc *time.Location) PartnerLocalDate {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return PartnerLocalDate{year: local.Year(), month: local.Month(), day: local.Day(), loc: loc}
}

// FromUTCDay reads back a date that was persisted at UTC day granularity
// (see UTCDay). Interpreting the stored instant in any other location
// would shift the calendar date for zones west of UTC.
func FromUTCDay(t time.Time) PartnerLocalDate {
	return NewPartnerLocalDate(t.UTC(), time.UTC)
}

// PartnerDateFrom builds a partner-local date from explicit components.
// The day is normalized by the time package, so out-of-range components
// roll over the same way time.Date does.
func PartnerDateFrom(year int, month time.Month, day int, loc *time.Location) PartnerLocalDate {
	if loc == nil {
		loc = time.UTC
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return PartnerLocalDate{year: t.Year(), month: t.Month(), day: t.Day(), loc: loc}
}

func (d PartnerLocalDate) Year() int         { return d.year }
func (d PartnerLocalDate) Month() time.Month { return d.month }
func (d PartnerLocalDate) Day() int          { return d.day }

func (d PartnerLocalDate) Location() *time.Location {
	if d.loc == nil {
		return time.UTC
	}
	return d.loc
}

func (d PartnerLocalDate) IsZero() bool {
	return d.year == 0 && d.day == 0
}

// Time returns midnight of the date in the partner timezone.
func (d PartnerLocalDate) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, d.Location())
}

// UTCDay returns midnight of the same calendar date in UTC. Persisted invoice
// periods are compared at this granularity so that two dates representing the
// same calendar day always match regardless of the timezone they were
// computed in.
func (d PartnerLocalDate) UTCDay() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d PartnerLocalDate) Format(layout string) string {
	return d.Time().Format(layout)
}

func (d PartnerLocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MonthKey returns the YYYY-MM identifier of the month the date falls in.
func (d PartnerLocalDate) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.year, int(d.month))
}

func (d PartnerLocalDate) StartOfMonth() PartnerLocalDate {
	return PartnerLocalDate{year: d.year, month: d.month, day: 1, loc: d.loc}
}

func (d PartnerLocalDate) EndOfMonth() PartnerLocalDate {
	return PartnerLocalDate{year: d.year, month: d.month, day: d.DaysInMonth(), loc: d.loc}
}

// DaysInMonth returns the number of calendar days in the month of the date.
func (d PartnerLocalDate) DaysInMonth() int {
	firstOfNext := time.Date(d.year, d.month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

func (d PartnerLocalDate) IsStartOfMonth() bool {
	return d.day == 1
}

func (d PartnerLocalDate) IsEndOfMonth() bool {
	return d.day == d.DaysInMonth()
}

// AddMonths adds the given number of months, clamping the day to the last
// valid day of the target month. Adding one month to Jan 31 gives Feb 28
// (or 29), never Mar 2. This mirrors how billing anchors behave across
// months of different lengths.
func (d PartnerLocalDate) AddMonths(months int) PartnerLocalDate {
	newY := d.year
	newM := time.Month(int(d.month) + months)
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNext := time.Date(newY, newM+1, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()

	newD := d.day
	if newD > lastDay {
		newD = lastDay
	}

	return PartnerLocalDate{year: newY, month: newM, day: newD, loc: d.loc}
}

func (d PartnerLocalDate) AddDays(days int) PartnerLocalDate {
	t := time.Date(d.year, d.month, d.day+days, 0, 0, 0, 0, time.UTC)
	return PartnerLocalDate{year: t.Year(), month: t.Month(), day: t.Day(), loc: d.loc}
}

func (d PartnerLocalDate) SubDays(days int) PartnerLocalDate {
	return d.AddDays(-days)
}

// WithDay sets the day of the month, clamping to the last valid day.
func (d PartnerLocalDate) WithDay(day int) PartnerLocalDate {
	if day < 1 {
		day = 1
	}
	if max := d.DaysInMonth(); day > max {
		day = max
	}
	return PartnerLocalDate{year: d.year, month: d.month, day: day, loc: d.loc}
}

// WithDayRolled sets the day of the month, rolling the date forward into the
// next month when the day does not exist in the current month. Setting day 30
// in February yields Mar 1 or Mar 2 depending on the year.
func (d PartnerLocalDate) WithDayRolled(day int) PartnerLocalDate {
	t := time.Date(d.year, d.month, day, 0, 0, 0, 0, time.UTC)
	return PartnerLocalDate{year: t.Year(), month: t.Month(), day: t.Day(), loc: d.loc}
}

// Compare returns -1, 0 or 1 comparing calendar dates, ignoring timezone.
func (d PartnerLocalDate) Compare(other PartnerLocalDate) int {
	a := d.UTCDay()
	b := other.UTCDay()
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func (d PartnerLocalDate) Before(other PartnerLocalDate) bool {
	return d.Compare(other) < 0
}

func (d PartnerLocalDate) After(other PartnerLocalDate) bool {
	return d.Compare(other) > 0
}

func (d PartnerLocalDate) Equal(other PartnerLocalDate) bool {
	return d.Compare(other) == 0
}

// DaysUntil returns the inclusive day count from d through end. A window of
// Jan 15 through Jan 31 spans 17 days. Returns 0 when end precedes d.
func (d PartnerLocalDate) DaysUntil(end PartnerLocalDate) int {
	diff := int(end.UTCDay().Sub(d.UTCDay()).Hours() / 24)
	if diff < 0 {
		return 0
	}
	return diff + 1
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d PartnerLocalDate) SameMonth(other PartnerLocalDate) bool {
	return d.year == other.year && d.month == other.month
}

// MinDate returns the earlier of two dates.
func MinDate(a, b PartnerLocalDate) PartnerLocalDate {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate returns the later of two dates.
func MaxDate(a, b PartnerLocalDate) PartnerLocalDate {
	if b.After(a) {
		return b
	}
	return a
}
