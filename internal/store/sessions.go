package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Session lifecycle states.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionExpired   = "expired"
)

// Session types.
const (
	SessionOpen  = "open"
	SessionTimed = "timed"
)

// Session is one customer's billable occupancy period.
type Session struct {
	ID                  int64
	CustomerID          int64
	CustomerName        string
	StartTime           time.Time
	EndTime             *time.Time
	PlannedMinutes      *int32
	Type                string
	Status              string
	HourlyRate          decimal.Decimal
	TotalBeforeDiscount decimal.Decimal
	TotalAmount         decimal.Decimal
	Discount            decimal.Decimal
	CreatedAt           time.Time
}

const sessionColumns = `s.id, s.customer_id, c.name, s.start_time, s.end_time, s.planned_minutes,
s.session_type, s.status, s.hourly_rate, s.total_before_discount, s.total_amount, s.discount, s.created_at`

const sessionFrom = ` FROM sessions s JOIN customers c ON c.id = s.customer_id `

// CreateSession opens a new session for a customer.
func (q *Queries) CreateSession(ctx context.Context, customerID int64, sessionType string, plannedMinutes *int32, hourlyRate decimal.Decimal) (Session, error) {
	var id int64
	err := q.db.QueryRow(ctx, `INSERT INTO sessions (customer_id, session_type, planned_minutes, hourly_rate)
VALUES ($1, $2, $3, $4) RETURNING id`, customerID, sessionType, plannedMinutes, money.ToNumeric(hourlyRate)).Scan(&id)
	if err != nil {
		return Session{}, err
	}
	return q.GetSessionByID(ctx, id)
}

// GetSessionByID fetches a session with its customer name.
func (q *Queries) GetSessionByID(ctx context.Context, id int64) (Session, error) {
	row := q.db.QueryRow(ctx, `SELECT `+sessionColumns+sessionFrom+`WHERE s.id = $1`, id)
	return scanSession(row)
}

// ListSessions returns sessions newest first, optionally filtered by status.
func (q *Queries) ListSessions(ctx context.Context, status string, limit, offset int32) ([]Session, error) {
	var (
		rowsQuery = `SELECT ` + sessionColumns + sessionFrom + `ORDER BY s.start_time DESC LIMIT $1 OFFSET $2`
		args      = []any{limit, offset}
	)
	if status != "" {
		rowsQuery = `SELECT ` + sessionColumns + sessionFrom + `WHERE s.status = $3 ORDER BY s.start_time DESC LIMIT $1 OFFSET $2`
		args = append(args, status)
	}
	rows, err := q.db.Query(ctx, rowsQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]Session, 0, limit)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CountSessions counts sessions, optionally filtered by status.
func (q *Queries) CountSessions(ctx context.Context, status string) (int64, error) {
	var total int64
	if status == "" {
		err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total)
		return total, err
	}
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE status = $1`, status).Scan(&total)
	return total, err
}

// CountActiveSessions counts sessions currently in the active state.
func (q *Queries) CountActiveSessions(ctx context.Context) (int64, error) {
	return q.CountSessions(ctx, SessionActive)
}

// RecomputeSessionTotals rewrites a session's running totals from its current
// order set. Runs in the caller's transaction so the totals can never be
// observed out of step with the orders. Only an active session is touched;
// returns false when the session was completed or expired concurrently, in
// which case the caller must abort so the frozen totals stay frozen.
func (q *Queries) RecomputeSessionTotals(ctx context.Context, sessionID int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `UPDATE sessions s SET
	total_before_discount = o.total,
	total_amount = o.total - s.discount
FROM (
	SELECT COALESCE(SUM(total_price), 0) AS total
	FROM orders WHERE session_id = $1
) o
WHERE s.id = $1 AND s.status = $2`, sessionID, SessionActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteSessionIfActive performs the active→completed transition as a
// compare-and-swap. Returns false when the session was not active, in which
// case nothing was written.
func (q *Queries) CompleteSessionIfActive(ctx context.Context, id int64, endTime time.Time, totalAmount, totalBefore, discount decimal.Decimal) (bool, error) {
	tag, err := q.db.Exec(ctx, `UPDATE sessions SET
	status = $2, end_time = $3, total_amount = $4, total_before_discount = $5, discount = $6
WHERE id = $1 AND status = $7`,
		id, SessionCompleted, endTime, money.ToNumeric(totalAmount), money.ToNumeric(totalBefore), money.ToNumeric(discount), SessionActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListOverdueTimedSessions returns active timed sessions whose planned window
// has fully elapsed as of now.
func (q *Queries) ListOverdueTimedSessions(ctx context.Context, now time.Time) ([]Session, error) {
	rows, err := q.db.Query(ctx, `SELECT `+sessionColumns+sessionFrom+`
WHERE s.status = $1 AND s.session_type = $2 AND s.planned_minutes IS NOT NULL
  AND s.start_time + make_interval(mins => s.planned_minutes) <= $3
ORDER BY s.start_time`, SessionActive, SessionTimed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListExpiringTimedSessions returns active timed sessions ending within the
// warning window.
func (q *Queries) ListExpiringTimedSessions(ctx context.Context, now time.Time, warning time.Duration) ([]Session, error) {
	rows, err := q.db.Query(ctx, `SELECT `+sessionColumns+sessionFrom+`
WHERE s.status = $1 AND s.session_type = $2 AND s.planned_minutes IS NOT NULL
  AND s.start_time + make_interval(mins => s.planned_minutes) > $3
  AND s.start_time + make_interval(mins => s.planned_minutes) <= $4
ORDER BY s.start_time`, SessionActive, SessionTimed, now, now.Add(warning))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// MarkSessionExpired flips an active session to expired. Returns false when
// the session was no longer active.
func (q *Queries) MarkSessionExpired(ctx context.Context, id int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `UPDATE sessions SET status = $2 WHERE id = $1 AND status = $3`,
		id, SessionExpired, SessionActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	var endTime sql.NullTime
	var plannedMinutes sql.NullInt32
	var rate, before, total, discount pgtype.Numeric
	if err := row.Scan(&s.ID, &s.CustomerID, &s.CustomerName, &s.StartTime, &endTime, &plannedMinutes,
		&s.Type, &s.Status, &rate, &before, &total, &discount, &s.CreatedAt); err != nil {
		return Session{}, err
	}
	if endTime.Valid {
		t := endTime.Time
		s.EndTime = &t
	}
	if plannedMinutes.Valid {
		m := plannedMinutes.Int32
		s.PlannedMinutes = &m
	}
	s.HourlyRate = money.FromNumeric(rate)
	s.TotalBeforeDiscount = money.FromNumeric(before)
	s.TotalAmount = money.FromNumeric(total)
	s.Discount = money.FromNumeric(discount)
	return s, nil
}
