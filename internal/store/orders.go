package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Order is one product-quantity purchase attached to a session. The unit
// price snapshots the product's catalog price at order time.
type Order struct {
	ID          int64
	SessionID   int64
	ProductID   int64
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	CreatedAt   time.Time
}

const orderColumns = `o.id, o.session_id, o.product_id, p.name, o.quantity, o.unit_price, o.total_price, o.created_at`

const orderFrom = ` FROM orders o JOIN products p ON p.id = o.product_id `

// CreateOrder inserts an order row with its frozen line total.
func (q *Queries) CreateOrder(ctx context.Context, sessionID, productID int64, quantity int32, unitPrice, totalPrice decimal.Decimal) (Order, error) {
	var id int64
	err := q.db.QueryRow(ctx, `INSERT INTO orders (session_id, product_id, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sessionID, productID, quantity, money.ToNumeric(unitPrice), money.ToNumeric(totalPrice)).Scan(&id)
	if err != nil {
		return Order{}, err
	}
	return q.GetOrderByID(ctx, id)
}

// GetOrderByID fetches an order with its product name.
func (q *Queries) GetOrderByID(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+orderFrom+`WHERE o.id = $1`, id)
	return scanOrder(row)
}

// ListOrdersBySession returns a session's orders, newest first.
func (q *Queries) ListOrdersBySession(ctx context.Context, sessionID int64) ([]Order, error) {
	rows, err := q.db.Query(ctx, `SELECT `+orderColumns+orderFrom+`WHERE o.session_id = $1 ORDER BY o.created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SumOrderTotals returns the sum of frozen line totals for a session.
func (q *Queries) SumOrderTotals(ctx context.Context, sessionID int64) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE session_id = $1`, sessionID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return money.FromNumeric(total), nil
}

// UpdateOrderQuantity changes an order's quantity and rewrites its line total.
func (q *Queries) UpdateOrderQuantity(ctx context.Context, id int64, quantity int32, totalPrice decimal.Decimal) (Order, error) {
	tag, err := q.db.Exec(ctx, `UPDATE orders SET quantity = $2, total_price = $3 WHERE id = $1`,
		id, quantity, money.ToNumeric(totalPrice))
	if err != nil {
		return Order{}, err
	}
	if tag.RowsAffected() == 0 {
		return Order{}, ErrNoRows
	}
	return q.GetOrderByID(ctx, id)
}

// DeleteOrder removes an order row.
func (q *Queries) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	var unitPrice, totalPrice pgtype.Numeric
	if err := row.Scan(&o.ID, &o.SessionID, &o.ProductID, &o.ProductName, &o.Quantity, &unitPrice, &totalPrice, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	o.UnitPrice = money.FromNumeric(unitPrice)
	o.TotalPrice = money.FromNumeric(totalPrice)
	return o, nil
}
