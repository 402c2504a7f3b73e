package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Expense is a standalone operational cost record.
type Expense struct {
	ID          int64
	Type        string
	Amount      decimal.Decimal
	Description *string
	Date        time.Time
	CreatedAt   time.Time
}

const expenseColumns = `id, expense_type, amount, description, expense_date, created_at`

// CreateExpense inserts an expense record.
func (q *Queries) CreateExpense(ctx context.Context, expenseType string, amount decimal.Decimal, description *string, date time.Time) (Expense, error) {
	row := q.db.QueryRow(ctx, `INSERT INTO expenses (expense_type, amount, description, expense_date)
VALUES ($1, $2, $3, $4) RETURNING `+expenseColumns, expenseType, money.ToNumeric(amount), description, date)
	return scanExpense(row)
}

// ListExpenses returns expenses newest first.
func (q *Queries) ListExpenses(ctx context.Context, limit, offset int32) ([]Expense, error) {
	rows, err := q.db.Query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY expense_date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]Expense, 0, limit)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CountExpenses returns the total number of expense records.
func (q *Queries) CountExpenses(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&total)
	return total, err
}

// SumExpenses returns the expense total and count for the half-open window
// [from, to), keyed on record creation time. Used by the dashboard aggregate.
func (q *Queries) SumExpenses(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	var total pgtype.Numeric
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM expenses WHERE created_at >= $1 AND created_at < $2`, from, to).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return money.FromNumeric(total), count, nil
}

// SumExpensesByDate returns the expense total and count for the half-open
// window [from, to), keyed on the expense date. A backdated expense counts
// toward the month it was incurred in, not the month it was recorded.
func (q *Queries) SumExpensesByDate(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	var total pgtype.Numeric
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM expenses WHERE expense_date >= $1 AND expense_date < $2`, from, to).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return money.FromNumeric(total), count, nil
}

func scanExpense(row interface{ Scan(...any) error }) (Expense, error) {
	var e Expense
	var amount pgtype.Numeric
	var description sql.NullString
	if err := row.Scan(&e.ID, &e.Type, &amount, &description, &e.Date, &e.CreatedAt); err != nil {
		return Expense{}, err
	}
	e.Amount = money.FromNumeric(amount)
	if description.Valid {
		e.Description = &description.String
	}
	return e, nil
}
