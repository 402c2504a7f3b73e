package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

type stubStore struct {
	invoices map[int64]store.Invoice
	sessions map[int64]store.Session
	orders   map[int64][]store.Order

	sumFrom, sumTo time.Time
	sumTotal       decimal.Decimal
	sumCount       int64
}

func newStubStore() *stubStore {
	return &stubStore{
		invoices: map[int64]store.Invoice{},
		sessions: map[int64]store.Session{},
		orders:   map[int64][]store.Order{},
	}
}

func (s *stubStore) GetInvoiceByID(ctx context.Context, id int64) (store.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return store.Invoice{}, store.ErrNoRows
	}
	return inv, nil
}

func (s *stubStore) ListInvoices(ctx context.Context, limit, offset int32) ([]store.Invoice, error) {
	out := []store.Invoice{}
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (s *stubStore) CountInvoices(ctx context.Context) (int64, error) {
	return int64(len(s.invoices)), nil
}

func (s *stubStore) SumInvoiceTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	s.sumFrom, s.sumTo = from, to
	return s.sumTotal, s.sumCount, nil
}

func (s *stubStore) GetSessionByID(ctx context.Context, id int64) (store.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return store.Session{}, store.ErrNoRows
	}
	return sess, nil
}

func (s *stubStore) ListOrdersBySession(ctx context.Context, sessionID int64) ([]store.Order, error) {
	return s.orders[sessionID], nil
}

func TestGetNotFound(t *testing.T) {
	svc := &Service{Store: newStubStore()}

	_, err := svc.Get(context.Background(), 99)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestDailyRevenueWindow(t *testing.T) {
	st := newStubStore()
	st.sumTotal = decimal.RequireFromString("33.50")
	st.sumCount = 2
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	// 2025-06-01 23:30 local is 2025-06-01 16:30 UTC.
	now := time.Date(2025, 6, 1, 16, 30, 0, 0, time.UTC)
	svc := &Service{Store: st, Location: loc, Now: func() time.Time { return now }}

	summary, err := svc.DailyRevenue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-06-01", summary.Label)
	require.Equal(t, "33.50", summary.TotalRevenue.StringFixed(2))
	require.EqualValues(t, 2, summary.Count)

	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, loc), st.sumFrom)
	require.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), st.sumTo)
}

func TestMonthlyRevenueWindow(t *testing.T) {
	st := newStubStore()
	st.sumTotal = decimal.RequireFromString("120.00")
	st.sumCount = 9
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := &Service{Store: st, Location: time.UTC, Now: func() time.Time { return now }}

	summary, err := svc.MonthlyRevenue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-06", summary.Label)
	require.EqualValues(t, 9, summary.Count)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), st.sumFrom)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), st.sumTo)
}

func TestRenderReceipt(t *testing.T) {
	inv := store.Invoice{
		InvoiceNumber: "INV-20250601-12",
		SessionAmount: decimal.RequireFromString("5.00"),
		OrdersAmount:  decimal.RequireFromString("10.00"),
		TotalAmount:   decimal.RequireFromString("13.50"),
		Discount:      decimal.RequireFromString("1.50"),
		PaymentMethod: "cash",
		CreatedAt:     time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
	}
	orders := []store.Order{
		{ProductName: "Americano", Quantity: 2, TotalPrice: decimal.RequireFromString("10.00")},
	}

	receipt := RenderReceipt(inv, "Budi", orders, time.UTC)

	require.Contains(t, receipt, "Customer: Budi")
	require.Contains(t, receipt, "Invoice: INV-20250601-12")
	require.Contains(t, receipt, "Americano x2 - 10.00")
	require.Contains(t, receipt, "Session: 5.00")
	require.Contains(t, receipt, "Discount: -1.50")
	require.Contains(t, receipt, "Total: 13.50")
	require.Contains(t, receipt, "Payment: cash")
}

func TestRenderReceiptOmitsZeroDiscount(t *testing.T) {
	inv := store.Invoice{
		InvoiceNumber: "INV-20250601-13",
		TotalAmount:   decimal.RequireFromString("15.00"),
		PaymentMethod: "cash",
		CreatedAt:     time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
	}

	receipt := RenderReceipt(inv, "Sari", nil, time.UTC)
	require.NotContains(t, receipt, "Discount:")
}
