package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/handlers"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/middleware"
)

// Router holds all route handlers
type Router struct {
	mux                *http.ServeMux
	jwtSecret          string
	logger             *slog.Logger
	contractHandler    *handlers.ContractHandler
	rentRequestHandler *handlers.RentRequestHandler
	statsHandler       *handlers.StatsHandler
	healthHandler      *handlers.HealthHandler
}

// NewRouter creates a new Router
func NewRouter(
	jwtSecret string,
	logger *slog.Logger,
	contractHandler *handlers.ContractHandler,
	rentRequestHandler *handlers.RentRequestHandler,
	statsHandler *handlers.StatsHandler,
	healthHandler *handlers.HealthHandler,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		jwtSecret:          jwtSecret,
		logger:             logger,
		contractHandler:    contractHandler,
		rentRequestHandler: rentRequestHandler,
		statsHandler:       statsHandler,
		healthHandler:      healthHandler,
	}
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {
	// Health endpoints (no auth required)
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)

	// Contract endpoints (admin)
	r.mux.HandleFunc("POST /api/v1/contracts", r.contractHandler.Create)
	r.mux.HandleFunc("GET /api/v1/contracts", r.contractHandler.List)
	r.mux.HandleFunc("GET /api/v1/contracts/stats", r.statsHandler.Overview)
	r.mux.HandleFunc("GET /api/v1/contracts/stats/comparison", r.statsHandler.Comparison)
	r.mux.HandleFunc("GET /api/v1/contracts/today-active", r.contractHandler.TodayActive)
	r.mux.HandleFunc("GET /api/v1/contracts/ending-soon", r.contractHandler.EndingSoon)
	r.mux.HandleFunc("PUT /api/v1/contracts/bulk-status", r.contractHandler.BulkStatus)
	r.mux.HandleFunc("GET /api/v1/contracts/{id}", r.contractHandler.Get)
	r.mux.HandleFunc("PUT /api/v1/contracts/{id}", r.contractHandler.Update)
	r.mux.HandleFunc("PUT /api/v1/contracts/{id}/confirm", r.contractHandler.Confirm)
	r.mux.HandleFunc("PUT /api/v1/contracts/{id}/start", r.contractHandler.Start)
	r.mux.HandleFunc("PUT /api/v1/contracts/{id}/complete", r.contractHandler.Complete)
	r.mux.HandleFunc("PUT /api/v1/contracts/{id}/cancel", r.contractHandler.Cancel)
	r.mux.HandleFunc("PUT /api/v1/contracts/{id}/payment", r.contractHandler.UpdatePayment)

	// Vehicle booking views (admin)
	r.mux.HandleFunc("GET /api/v1/contracts/vehicle/{vid}/availability", r.contractHandler.Availability)
	r.mux.HandleFunc("GET /api/v1/contracts/vehicle/{vid}/calendar", r.contractHandler.Calendar)

	// Rent-request endpoints; intake and the availability probe are public
	r.mux.HandleFunc("POST /api/v1/rent-requests", r.rentRequestHandler.Create)
	r.mux.HandleFunc("GET /api/v1/rent-requests/check-availability", r.rentRequestHandler.CheckAvailability)
	r.mux.HandleFunc("GET /api/v1/rent-requests", r.rentRequestHandler.List)
	r.mux.HandleFunc("GET /api/v1/rent-requests/{id}", r.rentRequestHandler.Get)
	r.mux.HandleFunc("GET /api/v1/rent-requests/{id}/history", r.rentRequestHandler.History)
	r.mux.HandleFunc("PATCH /api/v1/rent-requests/{id}", r.rentRequestHandler.UpdateStatus)
	r.mux.HandleFunc("DELETE /api/v1/rent-requests/{id}", r.rentRequestHandler.Delete)

	// Apply middleware stack
	var handler http.Handler = r.mux

	// Auth middleware (skip for health and public endpoints and OPTIONS)
	handler = r.authMiddleware(handler)

	// CORS - applied after auth so it can set headers for preflight before auth rejects
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig())(handler)

	// Logging
	handler = middleware.LoggingMiddleware(r.logger)(handler)

	// Recovery
	handler = middleware.RecoveryMiddleware(r.logger)(handler)

	return handler
}

// authMiddleware wraps the auth middleware but skips health endpoints,
// the public rent-request surface and OPTIONS requests
func (r *Router) authMiddleware(next http.Handler) http.Handler {
	authHandler := middleware.AuthMiddleware(r.jwtSecret)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if isPublic(req) {
			next.ServeHTTP(w, req)
			return
		}

		// Skip auth for CORS preflight requests
		if req.Method == http.MethodOptions {
			next.ServeHTTP(w, req)
			return
		}

		// Apply auth middleware for all other paths
		authHandler.ServeHTTP(w, req)
	})
}

func isPublic(req *http.Request) bool {
	path := req.URL.Path
	if path == "/health" || path == "/ready" {
		return true
	}
	// Public intake and availability probe
	if req.Method == http.MethodPost && path == "/api/v1/rent-requests" {
		return true
	}
	if req.Method == http.MethodGet && strings.HasPrefix(path, "/api/v1/rent-requests/check-availability") {
		return true
	}
	return false
}
