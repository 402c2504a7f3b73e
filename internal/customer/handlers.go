package customer

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes REST endpoints for customer management.
type Handler struct {
	Service *Service
}

type registerRequest struct {
	CustomerID string  `json:"customer_id"`
	Name       string  `json:"name" validate:"required,min=1,max=120"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email" validate:"omitempty,email"`
}

type contactRequest struct {
	Phone *string `json:"phone"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type customerResponse struct {
	ID         int64   `json:"id"`
	CustomerID string  `json:"customer_id"`
	Name       string  `json:"name"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// Register handles POST /api/v1/customers.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	c, err := h.Service.Register(r.Context(), RegisterInput{
		CustomerID: req.CustomerID,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, toResponse(c))
}

// List handles GET /api/v1/customers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := common.ParsePagination(r, 20, 100)
	customers, total, err := h.Service.List(r.Context(), int32(p.Limit), int32(p.Offset))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toResponse(c))
	}
	common.SetTotalCount(w, total)
	common.JSONData(w, http.StatusOK, out)
}

// Search handles GET /api/v1/customers/search?customer_id=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Search(r.Context(), r.URL.Query().Get("customer_id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, toResponse(c))
}

// Get handles GET /api/v1/customers/{customerID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "customerID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid customer id", nil)
		return
	}
	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, toResponse(c))
}

// UpdateContact handles PATCH /api/v1/customers/{customerID}.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "customerID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid customer id", nil)
		return
	}
	var req contactRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	c, err := h.Service.UpdateContact(r.Context(), id, req.Phone, req.Email)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, toResponse(c))
}

func toResponse(c store.Customer) customerResponse {
	return customerResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}
