package report

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ruangkerja/backend-ruang/internal/store"
)

type stubQuerier struct {
	dailyRevenue    decimal.Decimal
	monthlyRevenue  decimal.Decimal
	monthlyExpenses decimal.Decimal
	activeSessions  int64
	totalCustomers  int64
	calls           int
}

func (q *stubQuerier) SumInvoiceTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	q.calls++
	if to.Sub(from) <= 24*time.Hour {
		return q.dailyRevenue, 0, nil
	}
	return q.monthlyRevenue, 0, nil
}

func (q *stubQuerier) SumExpenses(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	q.calls++
	return q.monthlyExpenses, 0, nil
}

func (q *stubQuerier) CountActiveSessions(ctx context.Context) (int64, error) {
	q.calls++
	return q.activeSessions, nil
}

func (q *stubQuerier) CountCustomers(ctx context.Context) (int64, error) {
	q.calls++
	return q.totalCustomers, nil
}

type stubSettings struct{}

func (stubSettings) Get(ctx context.Context) (store.Settings, error) {
	return store.Settings{
		ID:            1,
		WorkspaceName: "Ruang Kerja",
		HourlyRate:    decimal.RequireFromString("10.00"),
		CurrencyCode:  "IDR",
	}, nil
}

func TestBuildAggregatesDashboard(t *testing.T) {
	q := &stubQuerier{
		dailyRevenue:    decimal.RequireFromString("33.50"),
		monthlyRevenue:  decimal.RequireFromString("33.50"),
		monthlyExpenses: decimal.RequireFromString("5.00"),
		activeSessions:  3,
		totalCustomers:  12,
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{Q: q, Settings: stubSettings{}, Location: time.UTC, Now: func() time.Time { return now }}

	d, err := svc.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, "33.50", d.DailyRevenue.StringFixed(2))
	require.Equal(t, "33.50", d.MonthlyRevenue.StringFixed(2))
	require.Equal(t, "5.00", d.MonthlyExpenses.StringFixed(2))
	require.Equal(t, "28.50", d.NetProfit.StringFixed(2))
	require.EqualValues(t, 3, d.ActiveSessionsCount)
	require.EqualValues(t, 12, d.TotalCustomers)
	require.Equal(t, "2025-06-01", d.Date)
	require.Equal(t, "2025-06", d.Month)
	require.Equal(t, "Ruang Kerja", d.WorkspaceName)
}

func TestBuildServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := &stubQuerier{
		dailyRevenue:   decimal.RequireFromString("10.00"),
		monthlyRevenue: decimal.RequireFromString("20.00"),
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{
		Q: q, Settings: stubSettings{}, R: client, TTL: time.Minute,
		Location: time.UTC, Now: func() time.Time { return now },
	}

	_, err := svc.Build(context.Background())
	require.NoError(t, err)
	firstCalls := q.calls

	d, err := svc.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, firstCalls, q.calls, "second build should come from cache")
	require.Equal(t, "10.00", d.DailyRevenue.StringFixed(2))
}
