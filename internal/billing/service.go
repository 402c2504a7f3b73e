package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/activity"
	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/obs"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Service executes checkout: it closes a session, bills elapsed time plus
// orders, applies the discount, and issues the immutable invoice. The whole
// mutation runs in one transaction guarded by a compare-and-set on the
// session status, so concurrent checkouts of the same session cannot both
// succeed.
type Service struct {
	Pool     store.TxStarter
	Q        *store.Queries
	Activity activity.Recorder
	Location *time.Location
	Now      func() time.Time
}

// CheckoutInput captures the checkout payload.
type CheckoutInput struct {
	Discount      decimal.Decimal
	DiscountType  string
	PaymentMethod string
}

// Result bundles the completed session with its invoice.
type Result struct {
	Session store.Session
	Invoice store.Invoice
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Checkout completes the session and issues its invoice atomically.
func (s *Service) Checkout(ctx context.Context, sessionID int64, input CheckoutInput) (Result, error) {
	started := time.Now()

	switch input.DiscountType {
	case "", DiscountFixed, DiscountPercentage:
	default:
		return Result{}, common.Validation("discount_type must be fixed or percentage")
	}
	if input.Discount.IsNegative() {
		return Result{}, common.Validation("discount must not be negative")
	}
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	sess, err := s.Q.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return Result{}, common.NotFound("session not found")
		}
		return Result{}, err
	}
	if sess.Status != store.SessionActive {
		s.countCheckout("invalid_state")
		return Result{}, common.InvalidState(fmt.Sprintf("session is %s and cannot be checked out", sess.Status))
	}

	now := s.now()

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	ordersAmount, err := qtx.SumOrderTotals(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	breakdown := Compute(Input{
		StartTime:    sess.StartTime,
		EndTime:      now,
		HourlyRate:   sess.HourlyRate,
		OrdersAmount: ordersAmount,
		Discount:     input.Discount,
		DiscountType: input.DiscountType,
	})

	completed, err := qtx.CompleteSessionIfActive(ctx, sessionID, now,
		breakdown.FinalTotal, breakdown.TotalBeforeDiscount, breakdown.DiscountAmount)
	if err != nil {
		return Result{}, err
	}
	if !completed {
		s.countCheckout("invalid_state")
		return Result{}, common.InvalidState("session was already closed")
	}

	invoiceNumber := fmt.Sprintf("INV-%s-%d", now.In(s.location()).Format("20060102"), sessionID)
	invoice, err := qtx.CreateInvoice(ctx, store.CreateInvoiceParams{
		SessionID:     sessionID,
		InvoiceNumber: invoiceNumber,
		SessionAmount: breakdown.SessionAmount,
		OrdersAmount:  breakdown.OrdersAmount,
		TotalAmount:   breakdown.FinalTotal,
		Discount:      breakdown.DiscountAmount,
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			s.countCheckout("conflict")
			return Result{}, common.Conflict(fmt.Sprintf("invoice %s already exists", invoiceNumber))
		}
		return Result{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}

	closed, err := s.Q.GetSessionByID(ctx, sessionID)
	if err != nil {
		// The checkout committed; fall back to the pre-commit snapshot.
		closed = sess
		closed.Status = store.SessionCompleted
		closed.EndTime = &now
		closed.TotalBeforeDiscount = breakdown.TotalBeforeDiscount
		closed.TotalAmount = breakdown.FinalTotal
		closed.Discount = breakdown.DiscountAmount
	}

	s.countCheckout("success")
	if obs.InvoicesIssuedTotal != nil {
		obs.InvoicesIssuedTotal.Inc()
	}
	if obs.CheckoutDuration != nil {
		obs.CheckoutDuration.Observe(obs.DurationMillis(time.Since(started)))
	}

	s.Activity.Record(ctx, activity.Event{
		Kind:        activity.KindSessionEnded,
		CustomerID:  &closed.CustomerID,
		Amount:      &breakdown.FinalTotal,
		Description: fmt.Sprintf("session #%d ended after %d minutes", sessionID, breakdown.Minutes),
	})
	s.Activity.Record(ctx, activity.Event{
		Kind:        activity.KindInvoiceGenerated,
		CustomerID:  &closed.CustomerID,
		Amount:      &invoice.TotalAmount,
		Description: fmt.Sprintf("invoice %s issued", invoice.InvoiceNumber),
	})
	if breakdown.DiscountAmount.IsPositive() {
		s.Activity.Record(ctx, activity.Event{
			Kind:        activity.KindDiscountApplied,
			CustomerID:  &closed.CustomerID,
			Amount:      &breakdown.DiscountAmount,
			Description: fmt.Sprintf("discount applied to invoice %s", invoice.InvoiceNumber),
		})
	}

	return Result{Session: closed, Invoice: invoice}, nil
}

func (s *Service) countCheckout(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}
