package money

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits stored for currency amounts.
const Precision = 2

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// Round normalises an amount to currency precision (half-up).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Precision)
}

// Parse converts a decimal string into an amount. Empty input yields zero.
func Parse(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", trimmed, err)
	}
	return d, nil
}

// MustParse is Parse for trusted inputs such as configuration defaults.
func MustParse(value string) decimal.Decimal {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

// ElapsedMinutes returns the whole minutes between start and end.
// Sub-minute remainders are dropped; durations are minute-granularity.
func ElapsedMinutes(start, end time.Time) int64 {
	if end.Before(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Minute)
}

// HoursFromMinutes converts whole minutes to fractional hours.
func HoursFromMinutes(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60))
}

// ToNumeric converts an amount to its pgtype representation for storage.
func ToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// FromNumeric converts a stored NUMERIC back into an amount. NULL maps to zero.
func FromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// String renders an amount with exactly two fractional digits.
func String(d decimal.Decimal) string {
	return d.StringFixed(Precision)
}
