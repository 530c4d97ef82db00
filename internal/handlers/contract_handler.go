package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/middleware"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/service"
)

// ContractHandler handles contract HTTP requests
type ContractHandler struct {
	svc            *service.ContractService
	endingSoonDays int
}

// NewContractHandler creates a new ContractHandler. endingSoonDays is the
// default horizon for the ending-soon report when the query omits ?days=.
func NewContractHandler(svc *service.ContractService, endingSoonDays int) *ContractHandler {
	return &ContractHandler{svc: svc, endingSoonDays: endingSoonDays}
}

// Create handles POST /api/v1/contracts
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContractRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	adminID := middleware.GetAdminID(r.Context())
	contract, err := h.svc.Create(r.Context(), req, adminID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.SuccessResponse(contract.ToResponse()))
}

// List handles GET /api/v1/contracts
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	params := parsePagination(r)
	search := parseSearchParams(r)
	filter := parseContractFilter(r)

	contracts, total, err := h.svc.List(r.Context(), filter, params, search)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	responses := make([]models.ContractResponse, len(contracts))
	for i, c := range contracts {
		responses[i] = c.ToResponse()
	}
	result := models.NewPaginatedResponse(responses, params.Page, params.PageSize, total)
	writeJSON(w, http.StatusOK, models.SuccessResponse(result))
}

func parseContractFilter(r *http.Request) models.ContractFilter {
	var filter models.ContractFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := models.ContractStatus(v)
		if models.ValidContractStatuses[status] {
			filter.Status = &status
		}
	}
	if v := q.Get("client_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ClientID = &id
		}
	}
	if v := q.Get("vehicle_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.VehicleID = &id
		}
	}
	if v := q.Get("service_type"); v != "" {
		st := models.ServiceType(v)
		if models.ValidServiceTypes[st] {
			filter.ServiceType = &st
		}
	}
	if t, ok := parseDateParam(r, "start_after"); ok {
		filter.StartAfter = &t
	}
	if t, ok := parseDateParam(r, "end_before"); ok {
		filter.EndBefore = &t
	}
	return filter
}

// Get handles GET /api/v1/contracts/{id}
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidContractID)
		return
	}

	contract, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(contract.ToResponse()))
}

// Update handles PUT /api/v1/contracts/{id}
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidContractID)
		return
	}

	var req models.UpdateContractRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contract, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(contract.ToResponse()))
}

// Confirm handles PUT /api/v1/contracts/{id}/confirm
func (h *ContractHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.ContractStatusConfirmed)
}

// Start handles PUT /api/v1/contracts/{id}/start
func (h *ContractHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.ContractStatusActive)
}

// Complete handles PUT /api/v1/contracts/{id}/complete
func (h *ContractHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.ContractStatusCompleted)
}

// Cancel handles PUT /api/v1/contracts/{id}/cancel
func (h *ContractHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.ContractStatusCancelled)
}

func (h *ContractHandler) transition(w http.ResponseWriter, r *http.Request, target models.ContractStatus) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidContractID)
		return
	}

	contract, err := h.svc.Transition(r.Context(), id, target)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(contract.ToResponse()))
}

// BulkStatus handles PUT /api/v1/contracts/bulk-status
func (h *ContractHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	affected, err := h.svc.BulkTransition(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(map[string]any{
		"updated": affected,
		"status":  req.Status,
	}))
}

// UpdatePayment handles PUT /api/v1/contracts/{id}/payment
func (h *ContractHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidContractID)
		return
	}

	var req models.UpdatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contract, err := h.svc.RecordPayment(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(contract.ToResponse()))
}

// TodayActive handles GET /api/v1/contracts/today-active
func (h *ContractHandler) TodayActive(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.svc.TodayActive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(toContractResponses(contracts)))
}

// EndingSoon handles GET /api/v1/contracts/ending-soon?days=
func (h *ContractHandler) EndingSoon(w http.ResponseWriter, r *http.Request) {
	days := h.endingSoonDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	contracts, err := h.svc.EndingSoon(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(toContractResponses(contracts)))
}

// Availability handles GET /api/v1/contracts/vehicle/{vid}/availability
// ?startDate=&endDate=[&excludeContractId=]. The exclude lets an edit
// check its own new dates without colliding with itself.
func (h *ContractHandler) Availability(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := parseIDFromPath(r, "vid")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidVehicleID)
		return
	}

	start, okStart := parseDateParam(r, "startDate")
	end, okEnd := parseDateParam(r, "endDate")
	if !okStart || !okEnd {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, MsgInvalidDateRange)
		return
	}

	var excludeContractID int64
	if v := r.URL.Query().Get("excludeContractId"); v != "" {
		excludeContractID, err = strconv.ParseInt(v, 10, 64)
		if err != nil || excludeContractID <= 0 {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidContractID)
			return
		}
	}

	availability, err := h.svc.CheckAvailability(r.Context(), vehicleID, start, end, excludeContractID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(availability))
}

// Calendar handles GET /api/v1/contracts/vehicle/{vid}/calendar?month=&year=
func (h *ContractHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := parseIDFromPath(r, "vid")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidVehicleID)
		return
	}

	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	if errM != nil || errY != nil || month < 1 || month > 12 || year < 2000 {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, MsgInvalidMonthYear)
		return
	}

	calendar, err := h.svc.Calendar(r.Context(), vehicleID, year, time.Month(month))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(calendar))
}

func toContractResponses(contracts []models.Contract) []models.ContractResponse {
	responses := make([]models.ContractResponse, len(contracts))
	for i, c := range contracts {
		responses[i] = c.ToResponse()
	}
	return responses
}
