package session

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
	sessions  map[int64]store.Session
	customers map[int64]store.Customer
	settings  store.Settings
	nextID    int64
}

func newStubStore() *stubStore {
	return &stubStore{
		sessions:  map[int64]store.Session{},
		customers: map[int64]store.Customer{1: {ID: 1, CustomerID: "C-AB12CD34", Name: "Budi"}},
		settings:  store.Settings{ID: 1, HourlyRate: decimal.RequireFromString("10.00"), ExpiryWarningMin: 10},
	}
}

func (s *stubStore) CreateSession(ctx context.Context, customerID int64, sessionType string, plannedMinutes *int32, hourlyRate decimal.Decimal) (store.Session, error) {
	s.nextID++
	sess := store.Session{
		ID:           s.nextID,
		CustomerID:   customerID,
		CustomerName: s.customers[customerID].Name,
		StartTime:    time.Now(),
		Type:         sessionType,
		Status:       store.SessionActive,
		HourlyRate:   hourlyRate,
	}
	if plannedMinutes != nil {
		pm := *plannedMinutes
		sess.PlannedMinutes = &pm
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *stubStore) GetSessionByID(ctx context.Context, id int64) (store.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return store.Session{}, store.ErrNoRows
	}
	return sess, nil
}

func (s *stubStore) ListSessions(ctx context.Context, status string, limit, offset int32) ([]store.Session, error) {
	out := []store.Session{}
	for _, sess := range s.sessions {
		if status == "" || sess.Status == status {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *stubStore) CountSessions(ctx context.Context, status string) (int64, error) {
	rows, _ := s.ListSessions(ctx, status, 0, 0)
	return int64(len(rows)), nil
}

func (s *stubStore) ListOrdersBySession(ctx context.Context, sessionID int64) ([]store.Order, error) {
	return nil, nil
}

func (s *stubStore) GetCustomerByID(ctx context.Context, id int64) (store.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return store.Customer{}, store.ErrNoRows
	}
	return c, nil
}

func (s *stubStore) GetSettings(ctx context.Context) (store.Settings, error) {
	return s.settings, nil
}

func (s *stubStore) ListOverdueTimedSessions(ctx context.Context, now time.Time) ([]store.Session, error) {
	out := []store.Session{}
	for _, sess := range s.sessions {
		if sess.Status != store.SessionActive || sess.Type != store.SessionTimed || sess.PlannedMinutes == nil {
			continue
		}
		end := sess.StartTime.Add(time.Duration(*sess.PlannedMinutes) * time.Minute)
		if !end.After(now) {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *stubStore) ListExpiringTimedSessions(ctx context.Context, now time.Time, warning time.Duration) ([]store.Session, error) {
	out := []store.Session{}
	for _, sess := range s.sessions {
		if sess.Status != store.SessionActive || sess.Type != store.SessionTimed || sess.PlannedMinutes == nil {
			continue
		}
		end := sess.StartTime.Add(time.Duration(*sess.PlannedMinutes) * time.Minute)
		if end.After(now) && !end.After(now.Add(warning)) {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *stubStore) MarkSessionExpired(ctx context.Context, id int64) (bool, error) {
	sess, ok := s.sessions[id]
	if !ok || sess.Status != store.SessionActive {
		return false, nil
	}
	sess.Status = store.SessionExpired
	s.sessions[id] = sess
	return true, nil
}

func TestStartOpenSessionDefaultsRateFromSettings(t *testing.T) {
	st := newStubStore()
	svc := &Service{Store: st}

	sess, err := svc.Start(context.Background(), StartInput{CustomerID: 1, Type: store.SessionOpen})
	require.NoError(t, err)
	require.Equal(t, store.SessionActive, sess.Status)
	require.Equal(t, "10.00", sess.HourlyRate.StringFixed(2))
}

func TestStartTimedRequiresPlannedMinutes(t *testing.T) {
	svc := &Service{Store: newStubStore()}

	_, err := svc.Start(context.Background(), StartInput{CustomerID: 1, Type: store.SessionTimed})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestStartRejectsPlannedMinutesOnOpen(t *testing.T) {
	svc := &Service{Store: newStubStore()}
	pm := int32(60)

	_, err := svc.Start(context.Background(), StartInput{CustomerID: 1, Type: store.SessionOpen, PlannedMinutes: &pm})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}

func TestStartUnknownCustomer(t *testing.T) {
	svc := &Service{Store: newStubStore()}

	_, err := svc.Start(context.Background(), StartInput{CustomerID: 99, Type: store.SessionOpen})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestSweepExpiredFlipsOverdueTimedSessions(t *testing.T) {
	st := newStubStore()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	pm := int32(60)
	st.sessions[5] = store.Session{
		ID: 5, CustomerID: 1, CustomerName: "Budi", StartTime: start,
		PlannedMinutes: &pm, Type: store.SessionTimed, Status: store.SessionActive,
	}
	svc := &Service{Store: st, Now: func() time.Time { return start.Add(61 * time.Minute) }}

	expired, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, store.SessionExpired, st.sessions[5].Status)

	// A second sweep finds nothing to flip.
	expired, err = svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Empty(t, expired)
}

func TestNearExpiryFlag(t *testing.T) {
	st := newStubStore()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	pm := int32(60)
	st.sessions[7] = store.Session{
		ID: 7, CustomerID: 1, CustomerName: "Budi", StartTime: start,
		PlannedMinutes: &pm, Type: store.SessionTimed, Status: store.SessionActive,
	}
	svc := &Service{Store: st, Now: func() time.Time { return start.Add(55 * time.Minute) }}

	views, _, err := svc.ListActive(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.True(t, views[0].NearExpiry)
	require.EqualValues(t, 55, views[0].RunningMinutes)

	svc.Now = func() time.Time { return start.Add(30 * time.Minute) }
	views, _, err = svc.ListActive(context.Background(), 50, 0)
	require.NoError(t, err)
	require.False(t, views[0].NearExpiry)
}
