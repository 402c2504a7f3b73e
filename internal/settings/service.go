package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Store defines the database operations for the settings singleton.
type Store interface {
	GetSettings(ctx context.Context) (store.Settings, error)
	EnsureSettings(ctx context.Context, arg store.EnsureSettingsParams) error
	UpdateSettings(ctx context.Context, arg store.UpdateSettingsParams) (store.Settings, error)
}

// Defaults seed the settings row on first read.
type Defaults struct {
	WorkspaceName    string
	HourlyRate       decimal.Decimal
	CurrencyCode     string
	TaxRate          decimal.Decimal
	ExpiryWarningMin int32
}

// Service manages the single-row workspace settings.
type Service struct {
	Store    Store
	Defaults Defaults
}

// UpdateInput carries the full replacement state for the settings row.
type UpdateInput struct {
	WorkspaceName    string
	HourlyRate       decimal.Decimal
	CurrencyCode     string
	TaxRate          decimal.Decimal
	ExpiryWarningMin int32
}

// Get returns the settings row, creating it from the defaults when absent.
func (s *Service) Get(ctx context.Context) (store.Settings, error) {
	settings, err := s.Store.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, store.ErrNoRows) {
		return store.Settings{}, err
	}
	if err := s.Store.EnsureSettings(ctx, store.EnsureSettingsParams{
		WorkspaceName:    s.Defaults.WorkspaceName,
		HourlyRate:       s.Defaults.HourlyRate,
		CurrencyCode:     s.Defaults.CurrencyCode,
		TaxRate:          s.Defaults.TaxRate,
		ExpiryWarningMin: s.Defaults.ExpiryWarningMin,
	}); err != nil {
		return store.Settings{}, err
	}
	return s.Store.GetSettings(ctx)
}

// Update replaces the settings row.
func (s *Service) Update(ctx context.Context, input UpdateInput) (store.Settings, error) {
	if strings.TrimSpace(input.WorkspaceName) == "" {
		return store.Settings{}, common.Validation("workspace_name is required")
	}
	if input.HourlyRate.IsNegative() {
		return store.Settings{}, common.Validation("hourly_rate must not be negative")
	}
	if input.TaxRate.IsNegative() {
		return store.Settings{}, common.Validation("tax_rate must not be negative")
	}
	if input.ExpiryWarningMin < 0 {
		return store.Settings{}, common.Validation("expiry_warning_min must not be negative")
	}
	if strings.TrimSpace(input.CurrencyCode) == "" {
		return store.Settings{}, common.Validation("currency_code is required")
	}

	// Make sure the row exists before the UPDATE targets it.
	if _, err := s.Get(ctx); err != nil {
		return store.Settings{}, err
	}
	return s.Store.UpdateSettings(ctx, store.UpdateSettingsParams{
		WorkspaceName:    strings.TrimSpace(input.WorkspaceName),
		HourlyRate:       input.HourlyRate,
		CurrencyCode:     strings.TrimSpace(input.CurrencyCode),
		TaxRate:          input.TaxRate,
		ExpiryWarningMin: input.ExpiryWarningMin,
	})
}
