package activity

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Entry kinds recorded in the activity feed.
const (
	KindCustomerCreated  = "customer_created"
	KindSessionStarted   = "session_started"
	KindSessionEnded     = "session_ended"
	KindSessionExpiring  = "session_expiring"
	KindOrderCreated     = "order_created"
	KindInvoiceGenerated = "invoice_generated"
	KindDiscountApplied  = "discount_applied"
	KindExpenseAdded     = "expense_added"
)

// Store defines the database operations required for the activity feed.
type Store interface {
	InsertActivity(ctx context.Context, arg store.InsertActivityParams) (store.ActivityEntry, error)
	ListActivity(ctx context.Context, kind string, limit, offset int32) ([]store.ActivityEntry, error)
	CountActivity(ctx context.Context, kind string) (int64, error)
}

// Recorder appends entries to the workspace activity feed. Recording is
// best-effort: failures are logged and never propagated to the caller,
// so a feed outage cannot fail the business operation it trails.
type Recorder struct {
	Store  Store
	Logger zerolog.Logger
}

// Event describes one activity feed entry.
type Event struct {
	Kind        string
	CustomerID  *int64
	StaffName   string
	Amount      *decimal.Decimal
	Description string
}

// Record appends an entry to the feed. Errors are swallowed after logging.
func (r Recorder) Record(ctx context.Context, ev Event) {
	if r.Store == nil {
		return
	}
	staff := ev.StaffName
	if staff == "" {
		staff = "system"
	}
	_, err := r.Store.InsertActivity(ctx, store.InsertActivityParams{
		Kind:        ev.Kind,
		CustomerID:  ev.CustomerID,
		StaffName:   staff,
		Amount:      ev.Amount,
		Description: ev.Description,
	})
	if err != nil {
		r.Logger.Warn().Err(err).Str("kind", ev.Kind).Msg("activity record failed")
	}
}
