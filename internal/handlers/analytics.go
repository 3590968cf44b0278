package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskdesk/apiserver/internal/services"
)

// AnalyticsHandler serves the dashboard and team reports.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// AnalyticsRouter registers reporting routes on the given router.
func AnalyticsRouter(r chi.Router, analyticsService *services.AnalyticsService) {
	handler := NewAnalyticsHandler(analyticsService)

	r.Get("/analytics", handler.GetAnalytics)
	r.Get("/team", handler.GetTeam)
}

func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.analyticsService.Analytics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (h *AnalyticsHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.analyticsService.TeamReport(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, team)
}
