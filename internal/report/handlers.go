package report

import (
	"net/http"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/money"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	Service *Service
}

type dashboardResponse struct {
	WorkspaceName       string `json:"workspace_name"`
	CurrencyCode        string `json:"currency_code"`
	HourlyRate          string `json:"hourly_rate"`
	DailyRevenue        string `json:"daily_revenue"`
	MonthlyRevenue      string `json:"monthly_revenue"`
	MonthlyExpenses     string `json:"monthly_expenses"`
	NetProfit           string `json:"net_profit"`
	ActiveSessionsCount int64  `json:"active_sessions_count"`
	TotalCustomers      int64  `json:"total_customers"`
	Date                string `json:"date"`
	Month               string `json:"month"`
}

// Dashboard handles GET /api/v1/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Build(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, dashboardResponse{
		WorkspaceName:       d.WorkspaceName,
		CurrencyCode:        d.CurrencyCode,
		HourlyRate:          d.HourlyRate.StringFixed(money.Precision),
		DailyRevenue:        d.DailyRevenue.StringFixed(money.Precision),
		MonthlyRevenue:      d.MonthlyRevenue.StringFixed(money.Precision),
		MonthlyExpenses:     d.MonthlyExpenses.StringFixed(money.Precision),
		NetProfit:           d.NetProfit.StringFixed(money.Precision),
		ActiveSessionsCount: d.ActiveSessionsCount,
		TotalCustomers:      d.TotalCustomers,
		Date:                d.Date,
		Month:               d.Month,
	})
}
