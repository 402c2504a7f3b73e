package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// RenderReceipt formats the printable receipt for an invoice. The discount
// line only appears when a discount was applied.
func RenderReceipt(inv store.Invoice, customerName string, orders []store.Order, loc *time.Location) string {
	lines := []string{
		"======== RECEIPT ========",
		"Customer: " + customerName,
		"Date: " + inv.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		"Invoice: " + inv.InvoiceNumber,
		"-------------------------",
	}
	for _, o := range orders {
		lines = append(lines, fmt.Sprintf("%s x%d - %s", o.ProductName, o.Quantity, o.TotalPrice.StringFixed(money.Precision)))
	}
	lines = append(lines,
		"-------------------------",
		"Session: "+inv.SessionAmount.StringFixed(money.Precision),
		"Orders: "+inv.OrdersAmount.StringFixed(money.Precision),
	)
	if inv.Discount.IsPositive() {
		lines = append(lines, "Discount: -"+inv.Discount.StringFixed(money.Precision))
	}
	lines = append(lines,
		"Total: "+inv.TotalAmount.StringFixed(money.Precision),
		"Payment: "+inv.PaymentMethod,
		"=========================",
	)
	return strings.Join(lines, "\n")
}
