package handlers

import (
	"net/http"
	"strconv"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/service"
)

// StatsHandler handles reporting HTTP requests
type StatsHandler struct {
	svc *service.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Overview handles GET /api/v1/contracts/stats
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(stats))
}

// Comparison handles GET /api/v1/contracts/stats/comparison?period=<days>
func (h *StatsHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	period := 30
	if v := r.URL.Query().Get("period"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "period must be an integer number of days")
			return
		}
		period = parsed
	}

	comparison, err := h.svc.Comparison(r.Context(), period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(comparison))
}
