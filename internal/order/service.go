package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/activity"
	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/obs"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Service manages orders attached to active sessions. Every mutation
// recomputes the owning session's totals inside the same transaction.
type Service struct {
	Pool     store.TxStarter
	Q        *store.Queries
	Activity activity.Recorder
}

// CreateInput captures the payload for attaching an order to a session.
type CreateInput struct {
	ProductID int64
	Quantity  *int32
	UnitPrice *decimal.Decimal
}

// Create attaches an order to an active session, freezing the unit price.
func (s *Service) Create(ctx context.Context, sessionID int64, input CreateInput) (store.Order, error) {
	sess, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return store.Order{}, err
	}

	product, err := s.Q.GetProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Order{}, common.NotFound("product not found")
		}
		return store.Order{}, err
	}
	if !product.IsActive {
		return store.Order{}, common.Validation("product is no longer available")
	}

	quantity := int32(1)
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 1 {
		return store.Order{}, common.Validation("quantity must be at least 1")
	}

	unitPrice := product.Price
	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}
	if unitPrice.IsNegative() {
		return store.Order{}, common.Validation("unit_price must not be negative")
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	order, err := qtx.CreateOrder(ctx, sessionID, product.ID, quantity, unitPrice, lineTotal(unitPrice, quantity))
	if err != nil {
		return store.Order{}, err
	}
	recomputed, err := qtx.RecomputeSessionTotals(ctx, sessionID)
	if err != nil {
		return store.Order{}, err
	}
	if !recomputed {
		return store.Order{}, common.InvalidState("session is no longer active")
	}
	if err := tx.Commit(ctx); err != nil {
		return store.Order{}, err
	}

	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.Inc()
	}
	s.Activity.Record(ctx, activity.Event{
		Kind:        activity.KindOrderCreated,
		CustomerID:  &sess.CustomerID,
		Amount:      &order.TotalPrice,
		Description: fmt.Sprintf("order %s x%d on session #%d", order.ProductName, order.Quantity, sessionID),
	})
	return order, nil
}

// UpdateQuantity changes an order's quantity, keeping the frozen unit price.
func (s *Service) UpdateQuantity(ctx context.Context, orderID int64, quantity int32) (store.Order, error) {
	if quantity < 1 {
		return store.Order{}, common.Validation("quantity must be at least 1")
	}
	order, err := s.get(ctx, orderID)
	if err != nil {
		return store.Order{}, err
	}
	if _, err := s.activeSession(ctx, order.SessionID); err != nil {
		return store.Order{}, err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	updated, err := qtx.UpdateOrderQuantity(ctx, orderID, quantity, lineTotal(order.UnitPrice, quantity))
	if err != nil {
		return store.Order{}, err
	}
	recomputed, err := qtx.RecomputeSessionTotals(ctx, order.SessionID)
	if err != nil {
		return store.Order{}, err
	}
	if !recomputed {
		return store.Order{}, common.InvalidState("session is no longer active")
	}
	if err := tx.Commit(ctx); err != nil {
		return store.Order{}, err
	}
	return updated, nil
}

// Delete removes an order from its still-active session.
func (s *Service) Delete(ctx context.Context, orderID int64) error {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return err
	}
	if _, err := s.activeSession(ctx, order.SessionID); err != nil {
		return err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	if err := qtx.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	recomputed, err := qtx.RecomputeSessionTotals(ctx, order.SessionID)
	if err != nil {
		return err
	}
	if !recomputed {
		return common.InvalidState("session is no longer active")
	}
	return tx.Commit(ctx)
}

// KitchenReceipt renders a printable ticket for one order.
func (s *Service) KitchenReceipt(ctx context.Context, orderID int64) (string, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return "", err
	}
	sess, err := s.Q.GetSessionByID(ctx, order.SessionID)
	if err != nil {
		return "", err
	}
	return RenderKitchenReceipt(order, sess.CustomerName), nil
}

func (s *Service) get(ctx context.Context, orderID int64) (store.Order, error) {
	order, err := s.Q.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Order{}, common.NotFound("order not found")
		}
		return store.Order{}, err
	}
	return order, nil
}

func (s *Service) activeSession(ctx context.Context, sessionID int64) (store.Session, error) {
	sess, err := s.Q.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Session{}, common.NotFound("session not found")
		}
		return store.Session{}, err
	}
	if sess.Status != store.SessionActive {
		return store.Session{}, common.InvalidState(fmt.Sprintf("session is %s, orders require an active session", sess.Status))
	}
	return sess, nil
}

func lineTotal(unitPrice decimal.Decimal, quantity int32) decimal.Decimal {
	return money.Round(unitPrice.Mul(decimal.NewFromInt32(quantity)))
}
