package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadOslo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	return loc
}

func TestPartnerLocalDate_TimezonePinning(t *testing.T) {
	oslo := mustLoadOslo(t)

	// 23:30 UTC on Jan 14 is already Jan 15 in Oslo.
	instant := time.Date(2025, time.January, 14, 23, 30, 0, 0, time.UTC)
	d := NewPartnerLocalDate(instant, oslo)

	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, "2025-01-15", d.String())
}

func TestPartnerLocalDate_UTCDay(t *testing.T) {
	oslo := mustLoadOslo(t)

	d := PartnerDateFrom(2025, time.June, 1, oslo)
	utc := d.UTCDay()

	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), utc)

	// The same calendar day computed in UTC compares equal.
	other := PartnerDateFrom(2025, time.June, 1, time.UTC)
	assert.True(t, d.Equal(other))
}

func TestPartnerLocalDate_FromUTCDayRoundTrip(t *testing.T) {
	// A date persisted through UTCDay must read back as the same calendar
	// day even when the partner sits west of UTC, where interpreting the
	// UTC midnight locally would land on the previous day.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	d := PartnerDateFrom(2025, time.February, 14, ny)
	stored := d.UTCDay()

	assert.Equal(t, "2025-02-14", FromUTCDay(stored).String())
	assert.Equal(t, "2025-02-13", NewPartnerLocalDate(stored, ny).String())
}

func TestPartnerLocalDate_DaysUntil(t *testing.T) {
	tests := []struct {
		name  string
		start PartnerLocalDate
		end   PartnerLocalDate
		want  int
	}{
		{
			name:  "mid month to end of month inclusive",
			start: PartnerDateFrom(2025, time.January, 15, nil),
			end:   PartnerDateFrom(2025, time.January, 31, nil),
			want:  17,
		},
		{
			name:  "full january",
			start: PartnerDateFrom(2025, time.January, 1, nil),
			end:   PartnerDateFrom(2025, time.January, 31, nil),
			want:  31,
		},
		{
			name:  "single day",
			start: PartnerDateFrom(2025, time.March, 10, nil),
			end:   PartnerDateFrom(2025, time.March, 10, nil),
			want:  1,
		},
		{
			name:  "end before start",
			start: PartnerDateFrom(2025, time.March, 10, nil),
			end:   PartnerDateFrom(2025, time.March, 9, nil),
			want:  0,
		},
		{
			name:  "across dst transition",
			start: PartnerDateFrom(2025, time.March, 25, mustLoadOslo(t)),
			end:   PartnerDateFrom(2025, time.April, 5, mustLoadOslo(t)),
			want:  12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.DaysUntil(tt.end))
		})
	}
}

func TestPartnerLocalDate_AddMonthsClamping(t *testing.T) {
	jan31 := PartnerDateFrom(2025, time.January, 31, nil)

	assert.Equal(t, "2025-02-28", jan31.AddMonths(1).String())
	assert.Equal(t, "2025-03-31", jan31.AddMonths(2).String())
	assert.Equal(t, "2024-02-29", PartnerDateFrom(2024, time.January, 31, nil).AddMonths(1).String())

	// Negative months walk backwards across a year boundary.
	assert.Equal(t, "2024-11-30", PartnerDateFrom(2025, time.January, 30, nil).AddMonths(-2).String())
}

func TestPartnerLocalDate_WithDayRolled(t *testing.T) {
	feb := PartnerDateFrom(2025, time.February, 10, nil)

	// Day 30 does not exist in February 2025; it rolls into March.
	assert.Equal(t, "2025-03-02", feb.WithDayRolled(30).String())
	assert.Equal(t, "2025-02-14", feb.WithDayRolled(14).String())
}

func TestPartnerLocalDate_MonthBoundaries(t *testing.T) {
	d := PartnerDateFrom(2024, time.February, 15, nil)

	assert.Equal(t, "2024-02-01", d.StartOfMonth().String())
	assert.Equal(t, "2024-02-29", d.EndOfMonth().String())
	assert.Equal(t, 29, d.DaysInMonth())
	assert.False(t, d.IsStartOfMonth())
	assert.True(t, d.EndOfMonth().IsEndOfMonth())
}

func TestPartnerLocalDate_AddDaysAcrossMonths(t *testing.T) {
	d := PartnerDateFrom(2025, time.January, 31, nil)

	assert.Equal(t, "2025-02-01", d.AddDays(1).String())
	assert.Equal(t, "2025-01-30", d.SubDays(1).String())
}

func TestMinMaxDate(t *testing.T) {
	a := PartnerDateFrom(2025, time.January, 15, nil)
	b := PartnerDateFrom(2025, time.February, 1, nil)

	assert.Equal(t, a, MinDate(a, b))
	assert.Equal(t, b, MaxDate(a, b))
	assert.Equal(t, a, MinDate(a, a))
}
