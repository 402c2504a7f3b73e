package expense

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
	created        []store.Expense
	sumFrom, sumTo time.Time
	sumTotal       decimal.Decimal
	sumCount       int64
}

func (s *stubStore) CreateExpense(ctx context.Context, expenseType string, amount decimal.Decimal, description *string, date time.Time) (store.Expense, error) {
	e := store.Expense{ID: int64(len(s.created) + 1), Type: expenseType, Amount: amount, Description: description, Date: date}
	s.created = append(s.created, e)
	return e, nil
}

func (s *stubStore) ListExpenses(ctx context.Context, limit, offset int32) ([]store.Expense, error) {
	return s.created, nil
}

func (s *stubStore) CountExpenses(ctx context.Context) (int64, error) {
	return int64(len(s.created)), nil
}

func (s *stubStore) SumExpensesByDate(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	s.sumFrom, s.sumTo = from, to
	if len(s.created) == 0 {
		return s.sumTotal, s.sumCount, nil
	}
	total := decimal.Zero
	var count int64
	for _, e := range s.created {
		if !e.Date.Before(from) && e.Date.Before(to) {
			total = total.Add(e.Amount)
			count++
		}
	}
	return total, count, nil
}

func TestCreateValidatesType(t *testing.T) {
	svc := &Service{Store: &stubStore{}}

	_, err := svc.Create(context.Background(), CreateInput{Type: "travel", Amount: decimal.RequireFromString("5.00")})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestCreateRequiresPositiveAmount(t *testing.T) {
	svc := &Service{Store: &stubStore{}}

	_, err := svc.Create(context.Background(), CreateInput{Type: "rent", Amount: decimal.Zero})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestCreateDefaultsDateToToday(t *testing.T) {
	st := &stubStore{}
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	svc := &Service{Store: st, Location: time.UTC, Now: func() time.Time { return now }}

	exp, err := svc.Create(context.Background(), CreateInput{Type: "supplies", Amount: decimal.RequireFromString("5.00")})
	require.NoError(t, err)
	require.Equal(t, "2025-06-15", exp.Date.Format("2006-01-02"))
}

func TestMonthlyWindow(t *testing.T) {
	st := &stubStore{sumTotal: decimal.RequireFromString("5.00"), sumCount: 1}
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	svc := &Service{Store: st, Location: time.UTC, Now: func() time.Time { return now }}

	summary, err := svc.Monthly(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-06", summary.Month)
	require.Equal(t, "5.00", summary.TotalSpent.StringFixed(2))
	require.EqualValues(t, 1, summary.Count)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), st.sumFrom)
	require.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), st.sumTo)
}

func TestMonthlyExcludesBackdatedExpense(t *testing.T) {
	st := &stubStore{}
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	svc := &Service{Store: st, Location: time.UTC, Now: func() time.Time { return now }}

	// Recorded today but dated last month; must not count toward June.
	mayDate := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateInput{Type: "rent", Amount: decimal.RequireFromString("100.00"), Date: &mayDate})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{Type: "supplies", Amount: decimal.RequireFromString("7.50")})
	require.NoError(t, err)

	summary, err := svc.Monthly(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2025-06", summary.Month)
	require.Equal(t, "7.50", summary.TotalSpent.StringFixed(2))
	require.EqualValues(t, 1, summary.Count)
}
