package money_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

func TestParse(t *testing.T) {
	d, err := money.Parse(" 12.50 ")
	require.NoError(t, err)
	require.Equal(t, "12.50", money.String(d))

	d, err = money.Parse("")
	require.NoError(t, err)
	require.True(t, d.IsZero())

	_, err = money.Parse("abc")
	require.Error(t, err)
}

func TestElapsedMinutes(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.Equal(t, int64(30), money.ElapsedMinutes(start, start.Add(30*time.Minute)))
	// sub-minute remainder is dropped
	require.Equal(t, int64(30), money.ElapsedMinutes(start, start.Add(30*time.Minute+45*time.Second)))
	require.Equal(t, int64(0), money.ElapsedMinutes(start, start.Add(-time.Minute)))
}

func TestHoursFromMinutes(t *testing.T) {
	half := money.HoursFromMinutes(30)
	require.True(t, half.Equal(decimal.RequireFromString("0.5")))

	rate := decimal.RequireFromString("10.00")
	require.Equal(t, "5.00", money.String(money.Round(half.Mul(rate))))
}

func TestNumericRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("1234.56")
	n := money.ToNumeric(d)
	require.True(t, n.Valid)
	back := money.FromNumeric(n)
	require.True(t, d.Equal(back))
}
