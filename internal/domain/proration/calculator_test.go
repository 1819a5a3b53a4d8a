package proration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hjemly/hjemly/internal/types"
)

func date(year int, month time.Month, day int) types.PartnerLocalDate {
	return types.PartnerDateFrom(year, month, day, nil)
}

func TestCalculate_FullCalendarMonth(t *testing.T) {
	calc := NewCalculator()

	result, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.March, 1),
		PeriodEnd:     date(2025, time.March, 31),
		MonthlyAmount: decimal.NewFromInt(12000),
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.NewFromInt(12000)), "got %s", result.Total)
	assert.Equal(t, 31, result.TotalDays)
	require.Len(t, result.Months, 1)
	assert.Equal(t, "2025-03", result.Months[0].Month)
	assert.Equal(t, 31, result.Months[0].Days)
}

func TestCalculate_PartialMonth(t *testing.T) {
	calc := NewCalculator()

	// 17 of January's 31 days.
	result, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.January, 15),
		PeriodEnd:     date(2025, time.January, 31),
		MonthlyAmount: decimal.NewFromInt(3100),
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.NewFromInt(1700)), "got %s", result.Total)
	assert.Equal(t, 17, result.TotalDays)
}

func TestCalculate_MultiMonthProratesPerMonth(t *testing.T) {
	calc := NewCalculator()

	// Jan 15 through Mar 31: each month prorated against its own length.
	result, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.January, 15),
		PeriodEnd:     date(2025, time.March, 31),
		MonthlyAmount: decimal.NewFromInt(2800),
	})
	require.NoError(t, err)

	require.Len(t, result.Months, 3)
	assert.Equal(t, 17, result.Months[0].Days)
	assert.Equal(t, 28, result.Months[1].Days)
	assert.Equal(t, 31, result.Months[2].Days)

	// Jan: 2800*17/31, Feb and Mar in full.
	janShare := decimal.NewFromInt(2800).
		Mul(decimal.NewFromInt(17)).
		Div(decimal.NewFromInt(31))
	expected := janShare.Add(decimal.NewFromInt(5600))
	assert.True(t, result.Total.Equal(expected), "got %s want %s", result.Total, expected)

	// The month shares always sum to the total.
	sum := decimal.Zero
	for _, m := range result.Months {
		sum = sum.Add(m.Amount)
	}
	assert.True(t, sum.Equal(result.Total))
}

func TestCalculate_DayBasisOverride(t *testing.T) {
	calc := NewCalculator()

	// One lease month spread over 17 billed days: the window is worth the
	// full monthly amount.
	result, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.January, 15),
		PeriodEnd:     date(2025, time.January, 31),
		MonthlyAmount: decimal.NewFromInt(1700),
		DayBasis:      17,
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.NewFromInt(1700)), "got %s", result.Total)
	require.Len(t, result.Months, 1)
	assert.Equal(t, 17, result.Months[0].Days)
}

func TestCalculate_DayBasisAcrossMonths(t *testing.T) {
	calc := NewCalculator()

	// 10 of 30 creditable days at 100 per day, split across a month
	// boundary.
	result, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.April, 26),
		PeriodEnd:     date(2025, time.May, 5),
		MonthlyAmount: decimal.NewFromInt(3000),
		DayBasis:      30,
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.NewFromInt(1000)), "got %s", result.Total)
	require.Len(t, result.Months, 2)
	assert.True(t, result.Months[0].Amount.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Months[1].Amount.Equal(decimal.NewFromInt(500)))
}

func TestCalculate_ChargeFull(t *testing.T) {
	calc := NewCalculator()

	result, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.January, 15),
		PeriodEnd:     date(2025, time.January, 31),
		MonthlyAmount: decimal.NewFromInt(900),
		ChargeFull:    true,
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, 17, result.TotalDays)
}

func TestCalculate_LeapFebruary(t *testing.T) {
	calc := NewCalculator()

	result, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2024, time.February, 1),
		PeriodEnd:     date(2024, time.February, 29),
		MonthlyAmount: decimal.NewFromInt(2900),
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.NewFromInt(2900)))
	assert.Equal(t, 29, result.Months[0].DaysInMonth)
}

func TestCalculate_InvalidParams(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.January, 31),
		PeriodEnd:     date(2025, time.January, 15),
		MonthlyAmount: decimal.NewFromInt(100),
	})
	assert.Error(t, err)

	_, err = calc.Calculate(context.Background(), Params{
		PeriodStart:   date(2025, time.January, 1),
		PeriodEnd:     date(2025, time.January, 31),
		MonthlyAmount: decimal.NewFromInt(-1),
	})
	assert.Error(t, err)

	_, err = calc.Calculate(context.Background(), Params{
		MonthlyAmount: decimal.NewFromInt(100),
	})
	assert.Error(t, err)
}
