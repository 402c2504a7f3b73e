package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes REST endpoints for managing the product catalog.
type Handler struct {
	Service *Service
}

type productRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Price    string `json:"price" validate:"required"`
	Category string `json:"category"`
	IsActive *bool  `json:"is_active"`
}

type productResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Category  string `json:"category"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Create handles POST /api/v1/products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, appErr := decodeProduct(r)
	if appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	p, err := h.Service.Create(r.Context(), input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, toResponse(p))
}

// List handles GET /api/v1/products. Inactive products are included only
// with ?all=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := common.ParsePagination(r, 50, 200)
	includeInactive := r.URL.Query().Get("all") == "true"
	products, total, err := h.Service.List(r.Context(), includeInactive, int32(p.Limit), int32(p.Offset))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, prod := range products {
		out = append(out, toResponse(prod))
	}
	common.SetTotalCount(w, total)
	common.JSONData(w, http.StatusOK, out)
}

// Get handles GET /api/v1/products/{productID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "productID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid product id", nil)
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, toResponse(p))
}

// Update handles PATCH /api/v1/products/{productID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "productID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid product id", nil)
		return
	}
	input, appErr := decodeProduct(r)
	if appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	p, err := h.Service.Update(r.Context(), id, input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, toResponse(p))
}

// Delete handles DELETE /api/v1/products/{productID}. Products are
// deactivated rather than removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "productID"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid product id", nil)
		return
	}
	if err := h.Service.Deactivate(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeProduct(r *http.Request) (ProductInput, *common.AppError) {
	var req productRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		return ProductInput{}, appErr
	}
	price, err := money.Parse(req.Price)
	if err != nil {
		return ProductInput{}, common.Validation("price must be a decimal number")
	}
	return ProductInput{
		Name:     req.Name,
		Price:    price,
		Category: req.Category,
		IsActive: req.IsActive,
	}, nil
}

func toResponse(p store.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(money.Precision),
		Category:  p.Category,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
