package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Invoice is the immutable financial summary produced once at checkout.
type Invoice struct {
	ID            int64
	SessionID     int64
	InvoiceNumber string
	SessionAmount decimal.Decimal
	OrdersAmount  decimal.Decimal
	TotalAmount   decimal.Decimal
	Discount      decimal.Decimal
	PaymentMethod string
	CreatedAt     time.Time
}

const invoiceColumns = `id, session_id, invoice_number, session_amount, orders_amount, total_amount, discount, payment_method, created_at`

// CreateInvoiceParams carries the frozen checkout breakdown.
type CreateInvoiceParams struct {
	SessionID     int64
	InvoiceNumber string
	SessionAmount decimal.Decimal
	OrdersAmount  decimal.Decimal
	TotalAmount   decimal.Decimal
	Discount      decimal.Decimal
	PaymentMethod string
}

// CreateInvoice inserts the one-per-session invoice record.
func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, `INSERT INTO invoices
	(session_id, invoice_number, session_amount, orders_amount, total_amount, discount, payment_method)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+invoiceColumns,
		arg.SessionID, arg.InvoiceNumber,
		money.ToNumeric(arg.SessionAmount), money.ToNumeric(arg.OrdersAmount),
		money.ToNumeric(arg.TotalAmount), money.ToNumeric(arg.Discount), arg.PaymentMethod)
	return scanInvoice(row)
}

// GetInvoiceByID fetches an invoice by primary key.
func (q *Queries) GetInvoiceByID(ctx context.Context, id int64) (Invoice, error) {
	row := q.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

// GetInvoiceBySessionID fetches the invoice bound to a session.
func (q *Queries) GetInvoiceBySessionID(ctx context.Context, sessionID int64) (Invoice, error) {
	row := q.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE session_id = $1`, sessionID)
	return scanInvoice(row)
}

// ListInvoices returns invoices newest first.
func (q *Queries) ListInvoices(ctx context.Context, limit, offset int32) ([]Invoice, error) {
	rows, err := q.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// CountInvoices returns the total number of invoices.
func (q *Queries) CountInvoices(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&total)
	return total, err
}

// SumInvoiceTotals returns the revenue and invoice count for the half-open
// window [from, to).
func (q *Queries) SumInvoiceTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	var total pgtype.Numeric
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
FROM invoices WHERE created_at >= $1 AND created_at < $2`, from, to).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return money.FromNumeric(total), count, nil
}

func scanInvoice(row interface{ Scan(...any) error }) (Invoice, error) {
	var inv Invoice
	var sessionAmount, ordersAmount, totalAmount, discount pgtype.Numeric
	if err := row.Scan(&inv.ID, &inv.SessionID, &inv.InvoiceNumber,
		&sessionAmount, &ordersAmount, &totalAmount, &discount,
		&inv.PaymentMethod, &inv.CreatedAt); err != nil {
		return Invoice{}, err
	}
	inv.SessionAmount = money.FromNumeric(sessionAmount)
	inv.OrdersAmount = money.FromNumeric(ordersAmount)
	inv.TotalAmount = money.FromNumeric(totalAmount)
	inv.Discount = money.FromNumeric(discount)
	return inv, nil
}
