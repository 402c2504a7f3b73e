package settings

import (
	"net/http"
	"time"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes the workspace settings endpoints.
type Handler struct {
	Service *Service
}

type updateRequest struct {
	WorkspaceName    string `json:"workspace_name" validate:"required,min=1,max=120"`
	HourlyRate       string `json:"hourly_rate" validate:"required"`
	CurrencyCode     string `json:"currency_code" validate:"required,len=3"`
	TaxRate          string `json:"tax_rate" validate:"required"`
	ExpiryWarningMin int32  `json:"expiry_warning_min" validate:"gte=0"`
}

// Response is the canonical JSON shape of the settings row.
type Response struct {
	WorkspaceName    string `json:"workspace_name"`
	HourlyRate       string `json:"hourly_rate"`
	CurrencyCode     string `json:"currency_code"`
	TaxRate          string `json:"tax_rate"`
	ExpiryWarningMin int32  `json:"expiry_warning_min"`
	UpdatedAt        string `json:"updated_at"`
}

// Get handles GET /api/v1/settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, ToResponse(settings))
}

// Update handles PUT /api/v1/settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteError(w, appErr)
		return
	}
	rate, err := money.Parse(req.HourlyRate)
	if err != nil {
		common.WriteError(w, common.Validation("hourly_rate must be a decimal number"))
		return
	}
	tax, err := money.Parse(req.TaxRate)
	if err != nil {
		common.WriteError(w, common.Validation("tax_rate must be a decimal number"))
		return
	}
	settings, svcErr := h.Service.Update(r.Context(), UpdateInput{
		WorkspaceName:    req.WorkspaceName,
		HourlyRate:       rate,
		CurrencyCode:     req.CurrencyCode,
		TaxRate:          tax,
		ExpiryWarningMin: req.ExpiryWarningMin,
	})
	if svcErr != nil {
		common.WriteError(w, svcErr)
		return
	}
	common.JSONData(w, http.StatusOK, ToResponse(settings))
}

// ToResponse converts the stored settings row into its JSON shape.
func ToResponse(s store.Settings) Response {
	return Response{
		WorkspaceName:    s.WorkspaceName,
		HourlyRate:       s.HourlyRate.StringFixed(money.Precision),
		CurrencyCode:     s.CurrencyCode,
		TaxRate:          s.TaxRate.StringFixed(money.Precision),
		ExpiryWarningMin: s.ExpiryWarningMin,
		UpdatedAt:        s.UpdatedAt.Format(time.RFC3339),
	}
}
