package handler

import (
	"context"
	"log/slog"
	"net/http"

	"loan-admin/internal/api/handler/dto"
	"loan-admin/internal/domain/analytics"
)

type DashboardProvider interface {
	GetDashboard(ctx context.Context) (*analytics.Dashboard, error)
}

type AnalyticsHandler struct {
	service DashboardProvider
	logger  *slog.Logger
}

func NewAnalyticsHandler(s DashboardProvider, l *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: s,
		logger:  l.With("component", "AnalyticsHandler"),
	}
}

// GetDashboard handles GET /analytics/dashboard
// @Summary Portfolio dashboard
// @Description Returns portfolio totals. expectedTotalInterestEarnings is the interest the portfolio
// @Description earns if every loan is repaid in full, not the interest collected so far.
// @Tags Analytics
// @Produce json
// @Success 200 {object} dto.DashboardResponse "Dashboard metrics"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /analytics/dashboard [get]
// @Security BearerAuth
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDashboard(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build dashboard", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewDashboardResponse(d))
}
