package order

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

func TestLineTotal(t *testing.T) {
	cases := []struct {
		unit     string
		quantity int32
		want     string
	}{
		{"5.00", 2, "10.00"},
		{"5.00", 1, "5.00"},
		{"3.33", 3, "9.99"},
		{"0.00", 4, "0.00"},
		{"2.505", 2, "5.01"},
	}
	for _, tc := range cases {
		got := lineTotal(decimal.RequireFromString(tc.unit), tc.quantity)
		require.Equal(t, tc.want, got.StringFixed(2), "unit=%s qty=%d", tc.unit, tc.quantity)
	}
}

// rowFunc adapts a scan function to pgx.Row.
type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// orderDB replays the statements the order-create transaction issues. The
// session it serves reads back active, but the totals recompute reports zero
// rows, as when a checkout closes the session mid-flight.
type orderDB struct {
	session    store.Session
	product    store.Product
	recomputed bool
}

func (db *orderDB) Exec(ctx context.Context, sqlText string, args ...any) (pgconn.CommandTag, error) {
	if !strings.HasPrefix(sqlText, "UPDATE sessions") {
		panic("unexpected Exec: " + sqlText)
	}
	db.recomputed = true
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func (db *orderDB) Query(ctx context.Context, sqlText string, args ...any) (pgx.Rows, error) {
	panic("unexpected Query: " + sqlText)
}

func (db *orderDB) QueryRow(ctx context.Context, sqlText string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sqlText, "FROM sessions"):
		s := db.session
		return rowFunc(func(dest ...any) error {
			*(dest[0].(*int64)) = s.ID
			*(dest[1].(*int64)) = s.CustomerID
			*(dest[2].(*string)) = s.CustomerName
			*(dest[3].(*time.Time)) = s.StartTime
			*(dest[4].(*sql.NullTime)) = sql.NullTime{}
			*(dest[5].(*sql.NullInt32)) = sql.NullInt32{}
			*(dest[6].(*string)) = s.Type
			*(dest[7].(*string)) = s.Status
			*(dest[8].(*pgtype.Numeric)) = money.ToNumeric(s.HourlyRate)
			*(dest[9].(*pgtype.Numeric)) = money.ToNumeric(s.TotalBeforeDiscount)
			*(dest[10].(*pgtype.Numeric)) = money.ToNumeric(s.TotalAmount)
			*(dest[11].(*pgtype.Numeric)) = money.ToNumeric(s.Discount)
			*(dest[12].(*time.Time)) = s.CreatedAt
			return nil
		})
	case strings.Contains(sqlText, "FROM products"):
		p := db.product
		return rowFunc(func(dest ...any) error {
			*(dest[0].(*int64)) = p.ID
			*(dest[1].(*string)) = p.Name
			*(dest[2].(*pgtype.Numeric)) = money.ToNumeric(p.Price)
			*(dest[3].(*string)) = p.Category
			*(dest[4].(*bool)) = p.IsActive
			*(dest[5].(*time.Time)) = p.CreatedAt
			return nil
		})
	case strings.Contains(sqlText, "INSERT INTO orders"):
		return rowFunc(func(dest ...any) error {
			*(dest[0].(*int64)) = 1
			return nil
		})
	case strings.Contains(sqlText, "FROM orders"):
		return rowFunc(func(dest ...any) error {
			*(dest[0].(*int64)) = 1
			*(dest[1].(*int64)) = db.session.ID
			*(dest[2].(*int64)) = db.product.ID
			*(dest[3].(*string)) = db.product.Name
			*(dest[4].(*int32)) = 1
			*(dest[5].(*pgtype.Numeric)) = money.ToNumeric(db.product.Price)
			*(dest[6].(*pgtype.Numeric)) = money.ToNumeric(db.product.Price)
			*(dest[7].(*time.Time)) = time.Now()
			return nil
		})
	}
	panic("unexpected QueryRow: " + sqlText)
}

type fakeTx struct {
	pgx.Tx
	db         store.DBTX
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sqlText string, args ...any) (pgconn.CommandTag, error) {
	return t.db.Exec(ctx, sqlText, args...)
}

func (t *fakeTx) Query(ctx context.Context, sqlText string, args ...any) (pgx.Rows, error) {
	return t.db.Query(ctx, sqlText, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, sqlText string, args ...any) pgx.Row {
	return t.db.QueryRow(ctx, sqlText, args...)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeStarter struct{ tx *fakeTx }

func (s *fakeStarter) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	return s.tx, nil
}

func TestCreateAbortsWhenSessionClosesMidTransaction(t *testing.T) {
	db := &orderDB{
		session: store.Session{
			ID:         7,
			CustomerID: 2,
			StartTime:  time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
			Type:       store.SessionOpen,
			Status:     store.SessionActive,
			HourlyRate: decimal.RequireFromString("10.00"),
			CreatedAt:  time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		},
		product: store.Product{
			ID:       3,
			Name:     "Americano",
			Price:    decimal.RequireFromString("5.00"),
			Category: "drink",
			IsActive: true,
		},
	}
	tx := &fakeTx{db: db}
	svc := &Service{Pool: &fakeStarter{tx: tx}, Q: store.New(db)}

	_, err := svc.Create(context.Background(), 7, CreateInput{ProductID: 3})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeInvalidState, appErr.Code)
	require.True(t, db.recomputed, "totals recompute must gate on status")
	require.False(t, tx.committed, "the order insert must not persist")
	require.True(t, tx.rolledBack)
}

func TestRenderKitchenReceipt(t *testing.T) {
	o := store.Order{
		ProductName: "Americano",
		Quantity:    2,
		CreatedAt:   time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
	}
	receipt := RenderKitchenReceipt(o, "Budi")

	require.Contains(t, receipt, "KITCHEN ORDER")
	require.Contains(t, receipt, "Customer: Budi")
	require.Contains(t, receipt, "Time: 2025-06-01 14:30")
	require.Contains(t, receipt, "Americano x2")
}
