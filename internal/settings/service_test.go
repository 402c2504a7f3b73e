package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

type stubStore struct {
	row        *store.Settings
	ensured    int
	lastEnsure store.EnsureSettingsParams
}

func (s *stubStore) GetSettings(ctx context.Context) (store.Settings, error) {
	if s.row == nil {
		return store.Settings{}, store.ErrNoRows
	}
	return *s.row, nil
}

func (s *stubStore) EnsureSettings(ctx context.Context, arg store.EnsureSettingsParams) error {
	s.ensured++
	s.lastEnsure = arg
	if s.row == nil {
		s.row = &store.Settings{
			ID:               1,
			WorkspaceName:    arg.WorkspaceName,
			HourlyRate:       arg.HourlyRate,
			CurrencyCode:     arg.CurrencyCode,
			TaxRate:          arg.TaxRate,
			ExpiryWarningMin: arg.ExpiryWarningMin,
		}
	}
	return nil
}

func (s *stubStore) UpdateSettings(ctx context.Context, arg store.UpdateSettingsParams) (store.Settings, error) {
	if s.row == nil {
		return store.Settings{}, store.ErrNoRows
	}
	s.row.WorkspaceName = arg.WorkspaceName
	s.row.HourlyRate = arg.HourlyRate
	s.row.CurrencyCode = arg.CurrencyCode
	s.row.TaxRate = arg.TaxRate
	s.row.ExpiryWarningMin = arg.ExpiryWarningMin
	return *s.row, nil
}

func defaults() Defaults {
	return Defaults{
		WorkspaceName:    "Ruang Kerja",
		HourlyRate:       decimal.RequireFromString("10.00"),
		CurrencyCode:     "IDR",
		TaxRate:          decimal.Zero,
		ExpiryWarningMin: 10,
	}
}

func TestGetCreatesRowFromDefaults(t *testing.T) {
	st := &stubStore{}
	svc := &Service{Store: st, Defaults: defaults()}

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, st.ensured)
	require.Equal(t, "Ruang Kerja", settings.WorkspaceName)
	require.Equal(t, "10.00", settings.HourlyRate.StringFixed(2))

	// Second read hits the existing row.
	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, st.ensured)
}

func TestUpdateReplacesRow(t *testing.T) {
	st := &stubStore{}
	svc := &Service{Store: st, Defaults: defaults()}

	settings, err := svc.Update(context.Background(), UpdateInput{
		WorkspaceName:    "Ruang Kerja Dua",
		HourlyRate:       decimal.RequireFromString("12.50"),
		CurrencyCode:     "IDR",
		TaxRate:          decimal.RequireFromString("11.00"),
		ExpiryWarningMin: 15,
	})
	require.NoError(t, err)
	require.Equal(t, "Ruang Kerja Dua", settings.WorkspaceName)
	require.Equal(t, "12.50", settings.HourlyRate.StringFixed(2))
	require.EqualValues(t, 15, settings.ExpiryWarningMin)
}

func TestUpdateValidation(t *testing.T) {
	svc := &Service{Store: &stubStore{}, Defaults: defaults()}

	_, err := svc.Update(context.Background(), UpdateInput{
		WorkspaceName: "",
		HourlyRate:    decimal.RequireFromString("10.00"),
		CurrencyCode:  "IDR",
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)

	_, err = svc.Update(context.Background(), UpdateInput{
		WorkspaceName: "Ruang",
		HourlyRate:    decimal.RequireFromString("-1.00"),
		CurrencyCode:  "IDR",
	})
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
}
