package session

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes REST endpoints for the session lifecycle.
type Handler struct {
	Service *Service
}

type startRequest struct {
	CustomerID     int64   `json:"customer_id" validate:"required,gt=0"`
	SessionType    string  `json:"session_type" validate:"required,oneof=open timed"`
	PlannedMinutes *int32  `json:"planned_minutes"`
	HourlyRate     *string `json:"hourly_rate"`
}

// Response is the canonical JSON shape of a session.
type Response struct {
	ID                  int64   `json:"id"`
	CustomerID          int64   `json:"customer_id"`
	CustomerName        string  `json:"customer_name"`
	StartTime           string  `json:"start_time"`
	EndTime             *string `json:"end_time,omitempty"`
	PlannedMinutes      *int32  `json:"planned_minutes,omitempty"`
	SessionType         string  `json:"session_type"`
	Status              string  `json:"status"`
	HourlyRate          string  `json:"hourly_rate"`
	TotalBeforeDiscount string  `json:"total_before_discount"`
	TotalAmount         string  `json:"total_amount"`
	Discount            string  `json:"discount"`
	RunningMinutes      *int64  `json:"running_minutes,omitempty"`
	NearExpiry          *bool   `json:"near_expiry,omitempty"`
}

type orderLine struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
	CreatedAt   string `json:"created_at"`
}

type detailResponse struct {
	Response
	Orders []orderLine `json:"orders"`
}

// Start handles POST /api/v1/sessions.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	input := StartInput{
		CustomerID:     req.CustomerID,
		Type:           req.SessionType,
		PlannedMinutes: req.PlannedMinutes,
	}
	if req.HourlyRate != nil {
		rate, err := money.Parse(*req.HourlyRate)
		if err != nil {
			common.WriteError(w, common.Validation("hourly_rate must be a decimal number"))
			return
		}
		input.HourlyRate = &rate
	}
	sess, err := h.Service.Start(r.Context(), input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, ToResponse(sess))
}

// List handles GET /api/v1/sessions with an optional status filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := common.ParsePagination(r, 20, 100)
	views, total, err := h.Service.List(r.Context(), r.URL.Query().Get("status"), int32(p.Limit), int32(p.Offset))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.SetTotalCount(w, total)
	common.JSONData(w, http.StatusOK, viewsToResponses(views))
}

// ListActive handles GET /api/v1/sessions/active.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	p := common.ParsePagination(r, 50, 200)
	views, total, err := h.Service.ListActive(r.Context(), int32(p.Limit), int32(p.Offset))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.SetTotalCount(w, total)
	common.JSONData(w, http.StatusOK, viewsToResponses(views))
}

// Get handles GET /api/v1/sessions/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "sessionID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid session id", nil)
		return
	}
	detail, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	resp := detailResponse{Response: viewToResponse(detail.View), Orders: make([]orderLine, 0, len(detail.Orders))}
	for _, o := range detail.Orders {
		resp.Orders = append(resp.Orders, toOrderLine(o))
	}
	common.JSONData(w, http.StatusOK, resp)
}

// ToResponse converts a stored session into its JSON shape.
func ToResponse(sess store.Session) Response {
	resp := Response{
		ID:                  sess.ID,
		CustomerID:          sess.CustomerID,
		CustomerName:        sess.CustomerName,
		StartTime:           sess.StartTime.Format(time.RFC3339),
		PlannedMinutes:      sess.PlannedMinutes,
		SessionType:         sess.Type,
		Status:              sess.Status,
		HourlyRate:          sess.HourlyRate.StringFixed(money.Precision),
		TotalBeforeDiscount: sess.TotalBeforeDiscount.StringFixed(money.Precision),
		TotalAmount:         sess.TotalAmount.StringFixed(money.Precision),
		Discount:            sess.Discount.StringFixed(money.Precision),
	}
	if sess.EndTime != nil {
		end := sess.EndTime.Format(time.RFC3339)
		resp.EndTime = &end
	}
	return resp
}

func viewToResponse(v View) Response {
	resp := ToResponse(v.Session)
	minutes := v.RunningMinutes
	resp.RunningMinutes = &minutes
	if v.Status == store.SessionActive && v.Type == store.SessionTimed {
		near := v.NearExpiry
		resp.NearExpiry = &near
	}
	return resp
}

func viewsToResponses(views []View) []Response {
	out := make([]Response, 0, len(views))
	for _, v := range views {
		out = append(out, viewToResponse(v))
	}
	return out
}

func toOrderLine(o store.Order) orderLine {
	return orderLine{
		ID:          o.ID,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		UnitPrice:   o.UnitPrice.StringFixed(money.Precision),
		TotalPrice:  o.TotalPrice.StringFixed(money.Precision),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}
