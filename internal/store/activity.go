package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// ActivityEntry is one append-only audit trail record.
type ActivityEntry struct {
	ID          int64
	Kind        string
	CustomerID  *int64
	StaffName   string
	Amount      *decimal.Decimal
	Description string
	CreatedAt   time.Time
}

const activityColumns = `id, kind, customer_id, staff_name, amount, description, created_at`

// InsertActivityParams captures one audit entry. CustomerID and Amount are optional.
type InsertActivityParams struct {
	Kind        string
	CustomerID  *int64
	StaffName   string
	Amount      *decimal.Decimal
	Description string
}

// InsertActivity appends an audit trail entry. Entries are never updated or deleted.
func (q *Queries) InsertActivity(ctx context.Context, arg InsertActivityParams) (ActivityEntry, error) {
	var amount any
	if arg.Amount != nil {
		amount = money.ToNumeric(*arg.Amount)
	}
	row := q.db.QueryRow(ctx, `INSERT INTO activity_log (kind, customer_id, staff_name, amount, description)
VALUES ($1, $2, $3, $4, $5) RETURNING `+activityColumns,
		arg.Kind, arg.CustomerID, arg.StaffName, amount, arg.Description)
	return scanActivity(row)
}

// ListActivity returns audit entries newest first, optionally filtered by kind.
func (q *Queries) ListActivity(ctx context.Context, kind string, limit, offset int32) ([]ActivityEntry, error) {
	var (
		query = `SELECT ` + activityColumns + ` FROM activity_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args  = []any{limit, offset}
	)
	if kind != "" {
		query = `SELECT ` + activityColumns + ` FROM activity_log WHERE kind = $3 ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, kind)
	}
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ActivityEntry, 0, limit)
	for rows.Next() {
		e, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountActivity counts audit entries, optionally filtered by kind.
func (q *Queries) CountActivity(ctx context.Context, kind string) (int64, error) {
	var total int64
	if kind == "" {
		err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log`).Scan(&total)
		return total, err
	}
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log WHERE kind = $1`, kind).Scan(&total)
	return total, err
}

func scanActivity(row interface{ Scan(...any) error }) (ActivityEntry, error) {
	var e ActivityEntry
	var customerID sql.NullInt64
	var amount pgtype.Numeric
	if err := row.Scan(&e.ID, &e.Kind, &customerID, &e.StaffName, &amount, &e.Description, &e.CreatedAt); err != nil {
		return ActivityEntry{}, err
	}
	if customerID.Valid {
		id := customerID.Int64
		e.CustomerID = &id
	}
	if amount.Valid {
		a := money.FromNumeric(amount)
		e.Amount = &a
	}
	return e, nil
}
