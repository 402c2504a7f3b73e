package expense

import (
	"net/http"
	"time"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes REST endpoints for expense tracking.
type Handler struct {
	Service *Service
}

type createRequest struct {
	ExpenseType string  `json:"expense_type" validate:"required"`
	Amount      string  `json:"amount" validate:"required"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

type expenseResponse struct {
	ID          int64   `json:"id"`
	ExpenseType string  `json:"expense_type"`
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

type monthlyResponse struct {
	Month      string `json:"month"`
	TotalSpent string `json:"total_spent"`
	Count      int64  `json:"count"`
}

// Create handles POST /api/v1/expenses.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		common.WriteError(w, common.Validation("amount must be a decimal number"))
		return
	}
	input := CreateInput{Type: req.ExpenseType, Amount: amount, Description: req.Description}
	if req.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *req.Date, h.Service.location())
		if err != nil {
			common.WriteError(w, common.Validation("date must be YYYY-MM-DD"))
			return
		}
		input.Date = &date
	}
	exp, err := h.Service.Create(r.Context(), input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, toResponse(exp))
}

// List handles GET /api/v1/expenses.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := common.ParsePagination(r, 20, 100)
	expenses, total, err := h.Service.List(r.Context(), int32(p.Limit), int32(p.Offset))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := make([]expenseResponse, 0, len(expenses))
	for _, exp := range expenses {
		out = append(out, toResponse(exp))
	}
	common.SetTotalCount(w, total)
	common.JSONData(w, http.StatusOK, out)
}

// Monthly handles GET /api/v1/expenses/monthly.
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Monthly(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, monthlyResponse{
		Month:      summary.Month,
		TotalSpent: summary.TotalSpent.StringFixed(money.Precision),
		Count:      summary.Count,
	})
}

func toResponse(e store.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		ExpenseType: e.Type,
		Amount:      e.Amount.StringFixed(money.Precision),
		Description: e.Description,
		Date:        e.Date.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
