package handlers

import (
	"net/http"
	"strconv"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/middleware"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/service"
)

// RentRequestHandler handles rent-request HTTP requests. Create and
// CheckAvailability are public; everything else sits behind admin auth.
type RentRequestHandler struct {
	svc         *service.RentRequestService
	contractSvc *service.ContractService
}

// NewRentRequestHandler creates a new RentRequestHandler
func NewRentRequestHandler(svc *service.RentRequestService, contractSvc *service.ContractService) *RentRequestHandler {
	return &RentRequestHandler{svc: svc, contractSvc: contractSvc}
}

// Create handles POST /api/v1/rent-requests (public intake)
func (h *RentRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRentRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.SuccessResponse(request.ToResponse()))
}

// CheckAvailability handles GET /api/v1/rent-requests/check-availability
// (public): ?vehicleId=&startDate=&endDate=
func (h *RentRequestHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := strconv.ParseInt(r.URL.Query().Get("vehicleId"), 10, 64)
	if err != nil || vehicleID <= 0 {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidVehicleID)
		return
	}

	start, okStart := parseDateParam(r, "startDate")
	end, okEnd := parseDateParam(r, "endDate")
	if !okStart || !okEnd {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, MsgInvalidDateRange)
		return
	}

	availability, err := h.contractSvc.CheckAvailability(r.Context(), vehicleID, start, end, 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// The public endpoint only says yes or no; conflict details stay
	// behind admin auth.
	writeJSON(w, http.StatusOK, models.SuccessResponse(map[string]any{
		"available": availability.Available,
	}))
}

// List handles GET /api/v1/rent-requests. With approvability=true each
// request carries whether approving it would succeed right now.
func (h *RentRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	params := parsePagination(r)
	search := parseSearchParams(r)

	var filter models.RentRequestFilter
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.RentRequestStatus(v)
		if models.ValidRentRequestStatuses[status] {
			filter.Status = &status
		}
	}
	if v := r.URL.Query().Get("vehicle_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.VehicleID = &id
		}
	}

	requests, total, err := h.svc.List(r.Context(), filter, params, search)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if r.URL.Query().Get("approvability") == "true" {
		approvability, err := h.svc.Approvability(r.Context(), requests)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		type entry struct {
			models.RentRequestResponse
			Approvable bool `json:"approvable"`
		}
		entries := make([]entry, len(requests))
		for i, req := range requests {
			entries[i] = entry{
				RentRequestResponse: req.ToResponse(),
				Approvable:          approvability[req.RequestID].Approvable,
			}
		}
		result := models.NewPaginatedResponse(entries, params.Page, params.PageSize, total)
		writeJSON(w, http.StatusOK, models.SuccessResponse(result))
		return
	}

	responses := make([]models.RentRequestResponse, len(requests))
	for i, req := range requests {
		responses[i] = req.ToResponse()
	}
	result := models.NewPaginatedResponse(responses, params.Page, params.PageSize, total)
	writeJSON(w, http.StatusOK, models.SuccessResponse(result))
}

// Get handles GET /api/v1/rent-requests/{id}
func (h *RentRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	request, err := h.svc.GetByRequestID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(request.ToResponse()))
}

// UpdateStatus handles PATCH /api/v1/rent-requests/{id}
func (h *RentRequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRentRequestStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	changedBy := middleware.GetAdminName(r.Context())
	request, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), req, changedBy)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(request.ToResponse()))
}

// History handles GET /api/v1/rent-requests/{id}/history
func (h *RentRequestHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(history))
}

// Delete handles DELETE /api/v1/rent-requests/{id}
func (h *RentRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(nil))
}
