package order

import (
	"fmt"
	"strings"

	"github.com/ruangkerja/backend-ruang/internal/store"
)

// RenderKitchenReceipt formats a plain-text kitchen ticket for one order.
func RenderKitchenReceipt(o store.Order, customerName string) string {
	lines := []string{
		"===== KITCHEN ORDER =====",
		"Customer: " + customerName,
		"Time: " + o.CreatedAt.Format("2006-01-02 15:04"),
		"-------------------------",
		fmt.Sprintf("%s x%d", o.ProductName, o.Quantity),
		"=========================",
	}
	return strings.Join(lines, "\n")
}
