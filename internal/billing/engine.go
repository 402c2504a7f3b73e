package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Discount types accepted at checkout.
const (
	DiscountFixed      = "fixed"
	DiscountPercentage = "percentage"
)

// Input carries everything the billing computation needs.
type Input struct {
	StartTime    time.Time
	EndTime      time.Time
	HourlyRate   decimal.Decimal
	OrdersAmount decimal.Decimal
	Discount     decimal.Decimal
	DiscountType string
}

// Breakdown aggregates the computed billing components.
type Breakdown struct {
	Minutes             int64
	SessionAmount       decimal.Decimal
	OrdersAmount        decimal.Decimal
	TotalBeforeDiscount decimal.Decimal
	DiscountAmount      decimal.Decimal
	FinalTotal          decimal.Decimal
}

// Compute derives the full billing breakdown for a session. Elapsed time is
// billed at minute granularity; the discount is clamped so the final total
// never goes negative.
func Compute(in Input) Breakdown {
	minutes := money.ElapsedMinutes(in.StartTime, in.EndTime)
	hours := money.HoursFromMinutes(minutes)
	sessionAmount := money.Round(hours.Mul(in.HourlyRate))
	totalBefore := sessionAmount.Add(in.OrdersAmount)

	var discountAmount decimal.Decimal
	switch in.DiscountType {
	case DiscountPercentage:
		discountAmount = money.Round(totalBefore.Mul(in.Discount).Div(decimal.NewFromInt(100)))
	default:
		discountAmount = money.Round(in.Discount)
	}
	if discountAmount.IsNegative() {
		discountAmount = decimal.Zero
	}
	if discountAmount.GreaterThan(totalBefore) {
		discountAmount = totalBefore
	}

	return Breakdown{
		Minutes:             minutes,
		SessionAmount:       sessionAmount,
		OrdersAmount:        in.OrdersAmount,
		TotalBeforeDiscount: totalBefore,
		DiscountAmount:      discountAmount,
		FinalTotal:          totalBefore.Sub(discountAmount),
	}
}
