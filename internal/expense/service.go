package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/activity"
	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// validTypes are the accepted expense categories.
var validTypes = map[string]bool{
	"electricity": true,
	"water":       true,
	"rent":        true,
	"internet":    true,
	"maintenance": true,
	"supplies":    true,
	"other":       true,
}

// Store defines the database operations required for expense tracking.
type Store interface {
	CreateExpense(ctx context.Context, expenseType string, amount decimal.Decimal, description *string, date time.Time) (store.Expense, error)
	ListExpenses(ctx context.Context, limit, offset int32) ([]store.Expense, error)
	CountExpenses(ctx context.Context) (int64, error)
	SumExpensesByDate(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
}

// Service records operating expenses for the workspace.
type Service struct {
	Store    Store
	Activity activity.Recorder
	Location *time.Location
	Now      func() time.Time
}

// CreateInput captures the payload for recording an expense.
type CreateInput struct {
	Type        string
	Amount      decimal.Decimal
	Description *string
	Date        *time.Time
}

// MonthlySummary is the month-to-date expense aggregate.
type MonthlySummary struct {
	Month      string
	TotalSpent decimal.Decimal
	Count      int64
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Create records an expense. The date defaults to today.
func (s *Service) Create(ctx context.Context, input CreateInput) (store.Expense, error) {
	if !validTypes[input.Type] {
		return store.Expense{}, common.Validation("expense_type must be one of electricity, water, rent, internet, maintenance, supplies, other")
	}
	if !input.Amount.IsPositive() {
		return store.Expense{}, common.Validation("amount must be positive")
	}
	date := s.now().In(s.location())
	if input.Date != nil {
		date = *input.Date
	}

	exp, err := s.Store.CreateExpense(ctx, input.Type, input.Amount, input.Description, date)
	if err != nil {
		return store.Expense{}, err
	}

	s.Activity.Record(ctx, activity.Event{
		Kind:        activity.KindExpenseAdded,
		Amount:      &exp.Amount,
		Description: fmt.Sprintf("%s expense recorded", exp.Type),
	})
	return exp, nil
}

// List returns expenses newest first with the total count.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]store.Expense, int64, error) {
	expenses, err := s.Store.ListExpenses(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountExpenses(ctx)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// Monthly sums expenses for the current local month, keyed on the expense
// date so backdated entries land in the month they belong to.
func (s *Service) Monthly(ctx context.Context) (MonthlySummary, error) {
	loc := s.location()
	now := s.now().In(loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	total, count, err := s.Store.SumExpensesByDate(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return MonthlySummary{}, err
	}
	return MonthlySummary{Month: monthStart.Format("2006-01"), TotalSpent: total, Count: count}, nil
}
