package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Store defines the database operations required for invoice reads.
type Store interface {
	GetInvoiceByID(ctx context.Context, id int64) (store.Invoice, error)
	ListInvoices(ctx context.Context, limit, offset int32) ([]store.Invoice, error)
	CountInvoices(ctx context.Context) (int64, error)
	SumInvoiceTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
	GetSessionByID(ctx context.Context, id int64) (store.Session, error)
	ListOrdersBySession(ctx context.Context, sessionID int64) ([]store.Order, error)
}

// Service serves the read-only invoice surface. Invoices are immutable
// after checkout creates them.
type Service struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
}

// RevenueSummary is a windowed revenue aggregate.
type RevenueSummary struct {
	Label        string
	TotalRevenue decimal.Decimal
	Count        int64
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

// Get fetches one invoice.
func (s *Service) Get(ctx context.Context, id int64) (store.Invoice, error) {
	inv, err := s.Store.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Invoice{}, common.NotFound("invoice not found")
		}
		return store.Invoice{}, err
	}
	return inv, nil
}

// List returns invoices newest first with the total count.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]store.Invoice, int64, error) {
	invoices, err := s.Store.ListInvoices(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountInvoices(ctx)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// Receipt renders the printable receipt for an invoice.
func (s *Service) Receipt(ctx context.Context, id int64) (string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	sess, err := s.Store.GetSessionByID(ctx, inv.SessionID)
	if err != nil {
		return "", err
	}
	orders, err := s.Store.ListOrdersBySession(ctx, inv.SessionID)
	if err != nil {
		return "", err
	}
	return RenderReceipt(inv, sess.CustomerName, orders, s.location()), nil
}

// DailyRevenue sums invoice totals for the current local calendar day.
func (s *Service) DailyRevenue(ctx context.Context) (RevenueSummary, error) {
	loc := s.location()
	now := s.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	total, count, err := s.Store.SumInvoiceTotals(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return RevenueSummary{}, err
	}
	return RevenueSummary{Label: dayStart.Format("2006-01-02"), TotalRevenue: total, Count: count}, nil
}

// MonthlyRevenue sums invoice totals for the current local month to date.
func (s *Service) MonthlyRevenue(ctx context.Context) (RevenueSummary, error) {
	loc := s.location()
	now := s.now().In(loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	total, count, err := s.Store.SumInvoiceTotals(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return RevenueSummary{}, err
	}
	return RevenueSummary{Label: monthStart.Format("2006-01"), TotalRevenue: total, Count: count}, nil
}
