package common

import (
	"net/http"
	"strconv"
)

// Pagination carries limit/offset parameters parsed from list queries.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination extracts limit and offset query parameters, clamping the
// limit to maxLimit and falling back to defaultLimit when absent or invalid.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	limit := defaultLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := 0
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o > 0 {
		offset = o
	}
	return Pagination{Limit: limit, Offset: offset}
}

// SetTotalCount exposes the total row count for a list response.
func SetTotalCount(w http.ResponseWriter, total int64) {
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
}
