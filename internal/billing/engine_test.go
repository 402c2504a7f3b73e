package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeHalfHourSession(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := Compute(Input{
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		HourlyRate:   d("10.00"),
		OrdersAmount: d("10.00"),
		DiscountType: DiscountFixed,
	})

	require.EqualValues(t, 30, b.Minutes)
	require.Equal(t, "5.00", b.SessionAmount.StringFixed(2))
	require.Equal(t, "15.00", b.TotalBeforeDiscount.StringFixed(2))
	require.Equal(t, "0.00", b.DiscountAmount.StringFixed(2))
	require.Equal(t, "15.00", b.FinalTotal.StringFixed(2))
}

func TestComputePercentageDiscount(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := Compute(Input{
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		HourlyRate:   d("10.00"),
		OrdersAmount: d("10.00"),
		Discount:     d("10"),
		DiscountType: DiscountPercentage,
	})

	require.Equal(t, "1.50", b.DiscountAmount.StringFixed(2))
	require.Equal(t, "13.50", b.FinalTotal.StringFixed(2))
}

func TestComputeFixedDiscount(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := Compute(Input{
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		HourlyRate:   d("10.00"),
		OrdersAmount: d("10.00"),
		Discount:     d("2.00"),
		DiscountType: DiscountFixed,
	})

	require.Equal(t, "2.00", b.DiscountAmount.StringFixed(2))
	require.Equal(t, "13.00", b.FinalTotal.StringFixed(2))
}

func TestComputeClampsDiscountToTotal(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := Compute(Input{
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		HourlyRate:   d("10.00"),
		OrdersAmount: d("10.00"),
		Discount:     d("100.00"),
		DiscountType: DiscountFixed,
	})

	require.Equal(t, "15.00", b.DiscountAmount.StringFixed(2))
	require.Equal(t, "0.00", b.FinalTotal.StringFixed(2))
}

func TestComputeSubMinuteElapsedIsFree(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := Compute(Input{
		StartTime:    start,
		EndTime:      start.Add(45 * time.Second),
		HourlyRate:   d("10.00"),
		OrdersAmount: decimal.Zero,
		DiscountType: DiscountFixed,
	})

	require.EqualValues(t, 0, b.Minutes)
	require.Equal(t, "0.00", b.SessionAmount.StringFixed(2))
	require.Equal(t, "0.00", b.FinalTotal.StringFixed(2))
}

func TestComputeRoundsSessionAmount(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// 50 minutes at 7.00/h = 5.8333... rounds to 5.83.
	b := Compute(Input{
		StartTime:    start,
		EndTime:      start.Add(50 * time.Minute),
		HourlyRate:   d("7.00"),
		OrdersAmount: decimal.Zero,
		DiscountType: DiscountFixed,
	})

	require.Equal(t, "5.83", b.SessionAmount.StringFixed(2))
}

func TestComputeNegativeDiscountIgnored(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := Compute(Input{
		StartTime:    start,
		EndTime:      start.Add(60 * time.Minute),
		HourlyRate:   d("10.00"),
		OrdersAmount: decimal.Zero,
		Discount:     d("-5.00"),
		DiscountType: DiscountFixed,
	})

	require.Equal(t, "0.00", b.DiscountAmount.StringFixed(2))
	require.Equal(t, "10.00", b.FinalTotal.StringFixed(2))
}
