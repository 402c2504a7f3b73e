package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ruangkerja/backend-ruang/internal/store"
)

type stubStore struct {
	lastInsert store.InsertActivityParams
	called     bool
	insertErr  error
}

func (s *stubStore) InsertActivity(ctx context.Context, arg store.InsertActivityParams) (store.ActivityEntry, error) {
	s.called = true
	s.lastInsert = arg
	return store.ActivityEntry{ID: 1, Kind: arg.Kind}, s.insertErr
}

func (s *stubStore) ListActivity(ctx context.Context, kind string, limit, offset int32) ([]store.ActivityEntry, error) {
	return nil, nil
}

func (s *stubStore) CountActivity(ctx context.Context, kind string) (int64, error) {
	return 0, nil
}

func TestRecorderRecord(t *testing.T) {
	st := &stubStore{}
	rec := Recorder{Store: st, Logger: zerolog.Nop()}

	amount := decimal.RequireFromString("13.50")
	customerID := int64(7)
	rec.Record(context.Background(), Event{
		Kind:        KindInvoiceGenerated,
		CustomerID:  &customerID,
		Amount:      &amount,
		Description: "invoice INV-20250101-12 issued",
	})

	require.True(t, st.called)
	require.Equal(t, KindInvoiceGenerated, st.lastInsert.Kind)
	require.Equal(t, "system", st.lastInsert.StaffName)
	require.NotNil(t, st.lastInsert.CustomerID)
	require.Equal(t, customerID, *st.lastInsert.CustomerID)
	require.NotNil(t, st.lastInsert.Amount)
	require.True(t, st.lastInsert.Amount.Equal(amount))
}

func TestRecorderRecordSwallowsErrors(t *testing.T) {
	st := &stubStore{insertErr: errors.New("connection reset")}
	rec := Recorder{Store: st, Logger: zerolog.Nop()}

	rec.Record(context.Background(), Event{Kind: KindOrderCreated, StaffName: "ani"})

	require.True(t, st.called)
	require.Equal(t, "ani", st.lastInsert.StaffName)
}

func TestRecorderNilStore(t *testing.T) {
	rec := Recorder{Logger: zerolog.Nop()}
	rec.Record(context.Background(), Event{Kind: KindSessionStarted})
}
