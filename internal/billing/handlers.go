package billing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/session"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	Service *Service
}

type checkoutRequest struct {
	Discount      string `json:"discount"`
	DiscountType  string `json:"discount_type" validate:"omitempty,oneof=fixed percentage"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,max=30"`
}

// InvoiceResponse is the canonical JSON shape of an invoice.
type InvoiceResponse struct {
	ID            int64  `json:"id"`
	SessionID     int64  `json:"session_id"`
	InvoiceNumber string `json:"invoice_number"`
	SessionAmount string `json:"session_amount"`
	OrdersAmount  string `json:"orders_amount"`
	TotalAmount   string `json:"total_amount"`
	Discount      string `json:"discount"`
	PaymentMethod string `json:"payment_method"`
	CreatedAt     string `json:"created_at"`
}

type checkoutResponse struct {
	Session session.Response `json:"session"`
	Invoice InvoiceResponse  `json:"invoice"`
}

// Checkout handles POST /api/v1/sessions/{sessionID}/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := common.ParseID(chi.URLParam(r, "sessionID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid session id", nil)
		return
	}
	var req checkoutRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	discount, err := money.Parse(req.Discount)
	if err != nil {
		common.WriteError(w, common.Validation("discount must be a decimal number"))
		return
	}
	result, err := h.Service.Checkout(r.Context(), sessionID, CheckoutInput{
		Discount:      discount,
		DiscountType:  req.DiscountType,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, checkoutResponse{
		Session: session.ToResponse(result.Session),
		Invoice: ToInvoiceResponse(result.Invoice),
	})
}

// ToInvoiceResponse converts a stored invoice into its JSON shape.
func ToInvoiceResponse(inv store.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		SessionID:     inv.SessionID,
		InvoiceNumber: inv.InvoiceNumber,
		SessionAmount: inv.SessionAmount.StringFixed(money.Precision),
		OrdersAmount:  inv.OrdersAmount.StringFixed(money.Precision),
		TotalAmount:   inv.TotalAmount.StringFixed(money.Precision),
		Discount:      inv.Discount.StringFixed(money.Precision),
		PaymentMethod: inv.PaymentMethod,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
}
