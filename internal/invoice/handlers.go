package invoice

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ruangkerja/backend-ruang/internal/billing"
	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Handler exposes the read-only invoice endpoints.
type Handler struct {
	Service *Service
}

type revenueResponse struct {
	TotalRevenue  string `json:"total_revenue"`
	InvoicesCount int64  `json:"invoices_count"`
	Date          string `json:"date,omitempty"`
	Month         string `json:"month,omitempty"`
}

// List handles GET /api/v1/invoices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := common.ParsePagination(r, 20, 100)
	invoices, total, err := h.Service.List(r.Context(), int32(p.Limit), int32(p.Offset))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := make([]billing.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, billing.ToInvoiceResponse(inv))
	}
	common.SetTotalCount(w, total)
	common.JSONData(w, http.StatusOK, out)
}

// Get handles GET /api/v1/invoices/{invoiceID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "invoiceID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid invoice id", nil)
		return
	}
	inv, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, billing.ToInvoiceResponse(inv))
}

// Receipt handles GET /api/v1/invoices/{invoiceID}/receipt.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "invoiceID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid invoice id", nil)
		return
	}
	receipt, err := h.Service.Receipt(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]string{"receipt": receipt})
}

// DailyRevenue handles GET /api/v1/invoices/daily-revenue.
func (h *Handler) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.DailyRevenue(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, revenueResponse{
		TotalRevenue:  summary.TotalRevenue.StringFixed(money.Precision),
		InvoicesCount: summary.Count,
		Date:          summary.Label,
	})
}

// MonthlyRevenue handles GET /api/v1/invoices/monthly-revenue.
func (h *Handler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.MonthlyRevenue(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, revenueResponse{
		TotalRevenue:  summary.TotalRevenue.StringFixed(money.Precision),
		InvoicesCount: summary.Count,
		Month:         summary.Label,
	})
}
