package order

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes REST endpoints for session orders.
type Handler struct {
	Service *Service
}

type createRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  *int32  `json:"quantity"`
	UnitPrice *string `json:"unit_price"`
}

type quantityRequest struct {
	Quantity int32 `json:"quantity" validate:"required,gte=1"`
}

type orderResponse struct {
	ID          int64  `json:"id"`
	SessionID   int64  `json:"session_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
	CreatedAt   string `json:"created_at"`
}

// Create handles POST /api/v1/sessions/{sessionID}/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := common.ParseID(chi.URLParam(r, "sessionID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid session id", nil)
		return
	}
	var req createRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	input := CreateInput{ProductID: req.ProductID, Quantity: req.Quantity}
	if req.UnitPrice != nil {
		price, err := money.Parse(*req.UnitPrice)
		if err != nil {
			common.WriteError(w, common.Validation("unit_price must be a decimal number"))
			return
		}
		input.UnitPrice = &price
	}
	o, err := h.Service.Create(r.Context(), sessionID, input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, toResponse(o))
}

// UpdateQuantity handles PATCH /api/v1/orders/{orderID}.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	orderID, ok := common.ParseID(chi.URLParam(r, "orderID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid order id", nil)
		return
	}
	var req quantityRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	o, err := h.Service.UpdateQuantity(r.Context(), orderID, req.Quantity)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, toResponse(o))
}

// Delete handles DELETE /api/v1/orders/{orderID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, ok := common.ParseID(chi.URLParam(r, "orderID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid order id", nil)
		return
	}
	if err := h.Service.Delete(r.Context(), orderID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KitchenReceipt handles GET /api/v1/orders/{orderID}/kitchen-receipt.
func (h *Handler) KitchenReceipt(w http.ResponseWriter, r *http.Request) {
	orderID, ok := common.ParseID(chi.URLParam(r, "orderID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid order id", nil)
		return
	}
	receipt, err := h.Service.KitchenReceipt(r.Context(), orderID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]string{"receipt": receipt})
}

func toResponse(o store.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		SessionID:   o.SessionID,
		ProductID:   o.ProductID,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		UnitPrice:   o.UnitPrice.StringFixed(money.Precision),
		TotalPrice:  o.TotalPrice.StringFixed(money.Precision),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}
