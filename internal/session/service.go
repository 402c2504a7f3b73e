package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/activity"
	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/obs"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Store defines the database operations required for session management.
type Store interface {
	CreateSession(ctx context.Context, customerID int64, sessionType string, plannedMinutes *int32, hourlyRate decimal.Decimal) (store.Session, error)
	GetSessionByID(ctx context.Context, id int64) (store.Session, error)
	ListSessions(ctx context.Context, status string, limit, offset int32) ([]store.Session, error)
	CountSessions(ctx context.Context, status string) (int64, error)
	ListOrdersBySession(ctx context.Context, sessionID int64) ([]store.Order, error)
	GetCustomerByID(ctx context.Context, id int64) (store.Customer, error)
	GetSettings(ctx context.Context) (store.Settings, error)
	ListOverdueTimedSessions(ctx context.Context, now time.Time) ([]store.Session, error)
	ListExpiringTimedSessions(ctx context.Context, now time.Time, warning time.Duration) ([]store.Session, error)
	MarkSessionExpired(ctx context.Context, id int64) (bool, error)
}

// Service orchestrates the session lifecycle up to checkout.
type Service struct {
	Store    Store
	Activity activity.Recorder
	Now      func() time.Time
}

// StartInput captures the payload for opening a session.
type StartInput struct {
	CustomerID     int64
	Type           string
	PlannedMinutes *int32
	HourlyRate     *decimal.Decimal
}

// View is a session enriched with derived timing fields.
type View struct {
	store.Session
	RunningMinutes int64
	NearExpiry     bool
}

// Detail bundles a session with its orders.
type Detail struct {
	View
	Orders []store.Order
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start opens a session for a customer. Timed sessions require a planned
// duration; the hourly rate falls back to the workspace settings.
func (s *Service) Start(ctx context.Context, input StartInput) (store.Session, error) {
	switch input.Type {
	case store.SessionOpen, store.SessionTimed:
	default:
		return store.Session{}, common.Validation("session_type must be open or timed")
	}
	if input.Type == store.SessionTimed {
		if input.PlannedMinutes == nil || *input.PlannedMinutes <= 0 {
			return store.Session{}, common.Validation("planned_minutes must be positive for timed sessions")
		}
	} else if input.PlannedMinutes != nil {
		return store.Session{}, common.Validation("planned_minutes only applies to timed sessions")
	}

	if _, err := s.Store.GetCustomerByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Session{}, common.NotFound("customer not found")
		}
		return store.Session{}, err
	}

	rate := decimal.Zero
	if input.HourlyRate != nil {
		rate = *input.HourlyRate
	} else {
		settings, err := s.Store.GetSettings(ctx)
		if err != nil {
			return store.Session{}, err
		}
		rate = settings.HourlyRate
	}
	if rate.IsNegative() {
		return store.Session{}, common.Validation("hourly_rate must not be negative")
	}

	sess, err := s.Store.CreateSession(ctx, input.CustomerID, input.Type, input.PlannedMinutes, rate)
	if err != nil {
		return store.Session{}, err
	}

	if obs.SessionsStartedTotal != nil {
		obs.SessionsStartedTotal.WithLabelValues(sess.Type).Inc()
	}
	s.Activity.Record(ctx, activity.Event{
		Kind:        activity.KindSessionStarted,
		CustomerID:  &sess.CustomerID,
		Description: fmt.Sprintf("%s session #%d started for %s", sess.Type, sess.ID, sess.CustomerName),
	})
	return sess, nil
}

// List returns sessions filtered by status with the total count.
func (s *Service) List(ctx context.Context, status string, limit, offset int32) ([]View, int64, error) {
	if status != "" && status != store.SessionActive && status != store.SessionCompleted && status != store.SessionExpired {
		return nil, 0, common.Validation("status must be active, completed or expired")
	}
	sessions, err := s.Store.ListSessions(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountSessions(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	warning, err := s.warningWindow(ctx)
	if err != nil {
		return nil, 0, err
	}
	views := make([]View, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, s.toView(sess, warning))
	}
	return views, total, nil
}

// ListActive returns the running sessions with derived timing fields.
func (s *Service) ListActive(ctx context.Context, limit, offset int32) ([]View, int64, error) {
	return s.List(ctx, store.SessionActive, limit, offset)
}

// Get fetches a session together with its orders.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	sess, err := s.Store.GetSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return Detail{}, common.NotFound("session not found")
		}
		return Detail{}, err
	}
	orders, err := s.Store.ListOrdersBySession(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	warning, err := s.warningWindow(ctx)
	if err != nil {
		return Detail{}, err
	}
	return Detail{View: s.toView(sess, warning), Orders: orders}, nil
}

// SweepExpired flips overdue timed sessions to expired and returns them.
func (s *Service) SweepExpired(ctx context.Context) ([]store.Session, error) {
	now := s.now()
	overdue, err := s.Store.ListOverdueTimedSessions(ctx, now)
	if err != nil {
		return nil, err
	}
	expired := make([]store.Session, 0, len(overdue))
	for _, sess := range overdue {
		flipped, err := s.Store.MarkSessionExpired(ctx, sess.ID)
		if err != nil {
			return expired, err
		}
		if !flipped {
			continue
		}
		if obs.SessionsExpiredTotal != nil {
			obs.SessionsExpiredTotal.Inc()
		}
		expired = append(expired, sess)
	}
	return expired, nil
}

// ListExpiring returns active timed sessions within the warning window of
// their planned end.
func (s *Service) ListExpiring(ctx context.Context) ([]store.Session, error) {
	warning, err := s.warningWindow(ctx)
	if err != nil {
		return nil, err
	}
	return s.Store.ListExpiringTimedSessions(ctx, s.now(), warning)
}

// WarnExpiring records a near-expiry activity entry for the given session.
func (s *Service) WarnExpiring(ctx context.Context, sess store.Session) {
	s.Activity.Record(ctx, activity.Event{
		Kind:        activity.KindSessionExpiring,
		CustomerID:  &sess.CustomerID,
		Description: fmt.Sprintf("timed session #%d for %s is about to expire", sess.ID, sess.CustomerName),
	})
}

func (s *Service) warningWindow(ctx context.Context) (time.Duration, error) {
	settings, err := s.Store.GetSettings(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(settings.ExpiryWarningMin) * time.Minute, nil
}

func (s *Service) toView(sess store.Session, warning time.Duration) View {
	view := View{Session: sess}
	if sess.Status != store.SessionActive {
		if sess.EndTime != nil {
			view.RunningMinutes = money.ElapsedMinutes(sess.StartTime, *sess.EndTime)
		}
		return view
	}
	now := s.now()
	view.RunningMinutes = money.ElapsedMinutes(sess.StartTime, now)
	if sess.Type == store.SessionTimed && sess.PlannedMinutes != nil {
		plannedEnd := sess.StartTime.Add(time.Duration(*sess.PlannedMinutes) * time.Minute)
		view.NearExpiry = !now.Before(plannedEnd.Add(-warning))
	}
	return view
}
