package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Settings is the single-row workspace configuration. The row always has id=1.
type Settings struct {
	ID               int64
	WorkspaceName    string
	HourlyRate       decimal.Decimal
	CurrencyCode     string
	TaxRate          decimal.Decimal
	ExpiryWarningMin int32
	UpdatedAt        time.Time
}

const settingsColumns = `id, workspace_name, hourly_rate, currency_code, tax_rate, expiry_warning_min, updated_at`

// GetSettings fetches the singleton settings row.
func (q *Queries) GetSettings(ctx context.Context) (Settings, error) {
	row := q.db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`)
	return scanSettings(row)
}

// EnsureSettingsParams seeds the settings row when it does not exist yet.
type EnsureSettingsParams struct {
	WorkspaceName    string
	HourlyRate       decimal.Decimal
	CurrencyCode     string
	TaxRate          decimal.Decimal
	ExpiryWarningMin int32
}

// EnsureSettings inserts the singleton row with the given defaults if absent.
// An existing row is left untouched.
func (q *Queries) EnsureSettings(ctx context.Context, arg EnsureSettingsParams) error {
	_, err := q.db.Exec(ctx, `INSERT INTO settings (id, workspace_name, hourly_rate, currency_code, tax_rate, expiry_warning_min)
VALUES (1, $1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`,
		arg.WorkspaceName, money.ToNumeric(arg.HourlyRate), arg.CurrencyCode,
		money.ToNumeric(arg.TaxRate), arg.ExpiryWarningMin)
	return err
}

// UpdateSettingsParams carries the full replacement state for the settings row.
type UpdateSettingsParams struct {
	WorkspaceName    string
	HourlyRate       decimal.Decimal
	CurrencyCode     string
	TaxRate          decimal.Decimal
	ExpiryWarningMin int32
}

// UpdateSettings replaces the singleton row and returns the updated state.
func (q *Queries) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) (Settings, error) {
	row := q.db.QueryRow(ctx, `UPDATE settings SET workspace_name = $1, hourly_rate = $2, currency_code = $3,
tax_rate = $4, expiry_warning_min = $5, updated_at = now()
WHERE id = 1 RETURNING `+settingsColumns,
		arg.WorkspaceName, money.ToNumeric(arg.HourlyRate), arg.CurrencyCode,
		money.ToNumeric(arg.TaxRate), arg.ExpiryWarningMin)
	return scanSettings(row)
}

func scanSettings(row interface{ Scan(...any) error }) (Settings, error) {
	var s Settings
	var rate, tax pgtype.Numeric
	if err := row.Scan(&s.ID, &s.WorkspaceName, &rate, &s.CurrencyCode, &tax, &s.ExpiryWarningMin, &s.UpdatedAt); err != nil {
		return Settings{}, err
	}
	s.HourlyRate = money.FromNumeric(rate)
	s.TaxRate = money.FromNumeric(tax)
	return s, nil
}
