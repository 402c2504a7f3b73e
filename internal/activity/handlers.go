package activity

import (
	"net/http"
	"time"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

// Handler exposes the activity feed endpoint.
type Handler struct {
	Store Store
}

type entryResponse struct {
	ID          int64   `json:"id"`
	Kind        string  `json:"kind"`
	CustomerID  *int64  `json:"customer_id,omitempty"`
	StaffName   string  `json:"staff_name"`
	Amount      *string `json:"amount,omitempty"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// List returns recent activity entries, newest first. The kind query
// parameter narrows the feed to one entry kind.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "ACTIVITY_NOT_CONFIGURED", "activity store not configured", nil)
		return
	}
	p := common.ParsePagination(r, 50, 200)
	kind := r.URL.Query().Get("kind")

	entries, err := h.Store.ListActivity(r.Context(), kind, int32(p.Limit), int32(p.Offset))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ACTIVITY_QUERY_FAILED", "unable to fetch activity feed", nil)
		return
	}
	total, err := h.Store.CountActivity(r.Context(), kind)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "ACTIVITY_QUERY_FAILED", "unable to count activity feed", nil)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toResponse(e))
	}
	common.SetTotalCount(w, total)
	common.JSONData(w, http.StatusOK, out)
}

func toResponse(e store.ActivityEntry) entryResponse {
	resp := entryResponse{
		ID:          e.ID,
		Kind:        e.Kind,
		CustomerID:  e.CustomerID,
		StaffName:   e.StaffName,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if e.Amount != nil {
		s := e.Amount.StringFixed(2)
		resp.Amount = &s
	}
	return resp
}
