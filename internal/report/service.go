package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Querier defines the database access required for the dashboard.
type Querier interface {
	SumInvoiceTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
	SumExpenses(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
	CountActiveSessions(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
}

// SettingsProvider yields the current workspace settings.
type SettingsProvider interface {
	Get(ctx context.Context) (store.Settings, error)
}

// Service aggregates the owner dashboard with a short-lived redis cache.
type Service struct {
	Q        Querier
	Settings SettingsProvider
	R        *redis.Client
	TTL      time.Duration
	Location *time.Location
	Now      func() time.Time
}

// Dashboard is the aggregated owner view for one local calendar day.
type Dashboard struct {
	WorkspaceName       string          `json:"workspace_name"`
	CurrencyCode        string          `json:"currency_code"`
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	DailyRevenue        decimal.Decimal `json:"daily_revenue"`
	MonthlyRevenue      decimal.Decimal `json:"monthly_revenue"`
	MonthlyExpenses     decimal.Decimal `json:"monthly_expenses"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	ActiveSessionsCount int64           `json:"active_sessions_count"`
	TotalCustomers      int64           `json:"total_customers"`
	Date                string          `json:"date"`
	Month               string          `json:"month"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s != nil && s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Build assembles the dashboard, serving a cached copy when fresh.
func (s *Service) Build(ctx context.Context) (Dashboard, error) {
	if s == nil || s.Q == nil || s.Settings == nil {
		return Dashboard{}, fmt.Errorf("report service not configured")
	}
	loc := s.location()
	now := s.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	key := "report:dashboard:" + dayStart.Format("2006-01-02")
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	dailyRevenue, _, err := s.Q.SumInvoiceTotals(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return Dashboard{}, err
	}
	monthlyRevenue, _, err := s.Q.SumInvoiceTotals(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return Dashboard{}, err
	}
	monthlyExpenses, _, err := s.Q.SumExpenses(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return Dashboard{}, err
	}
	activeSessions, err := s.Q.CountActiveSessions(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	totalCustomers, err := s.Q.CountCustomers(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	dashboard := Dashboard{
		WorkspaceName:       settings.WorkspaceName,
		CurrencyCode:        settings.CurrencyCode,
		HourlyRate:          settings.HourlyRate,
		DailyRevenue:        dailyRevenue,
		MonthlyRevenue:      monthlyRevenue,
		MonthlyExpenses:     monthlyExpenses,
		NetProfit:           monthlyRevenue.Sub(monthlyExpenses),
		ActiveSessionsCount: activeSessions,
		TotalCustomers:      totalCustomers,
		Date:                dayStart.Format("2006-01-02"),
		Month:               monthStart.Format("2006-01"),
	}
	s.store(ctx, key, dashboard)
	return dashboard, nil
}

func (s *Service) fromCache(ctx context.Context, key string) (Dashboard, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Dashboard{}, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Dashboard{}, false
	}
	var dashboard Dashboard
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return Dashboard{}, false
	}
	return dashboard, true
}

func (s *Service) store(ctx context.Context, key string, dashboard Dashboard) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(dashboard)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
