package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// readinessTimeout bounds the database ping on /ready
const readinessTimeout = 5 * time.Second

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health: the process is up
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles GET /ready: the process can reach Oracle. The booking
// service is useless without its database, so readiness follows the pool.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "database connection failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
