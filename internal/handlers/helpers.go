package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/service"
)

// maxRequestBodySize limits the size of request bodies (1MB)
const maxRequestBodySize = 1 << 20 // 1MB

// dateLayout is the wire format for date-only query parameters
const dateLayout = "2006-01-02"

// parseIDFromPath extracts an int64 ID from the request path.
// The name parameter should match the path variable name (e.g., "id", "vid").
func parseIDFromPath(r *http.Request, name string) (int64, error) {
	idStr := r.PathValue(name)
	return strconv.ParseInt(idStr, 10, 64)
}

// parsePagination extracts pagination parameters from query string
func parsePagination(r *http.Request) models.PaginationParams {
	page := 1
	pageSize := 20

	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := r.URL.Query().Get("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	return models.PaginationParams{
		Page:     page,
		PageSize: pageSize,
	}
}

// parseSearchParams extracts search/sort parameters from query string
func parseSearchParams(r *http.Request) models.SearchParams {
	params := models.SearchParams{
		Query:  r.URL.Query().Get("q"),
		SortBy: r.URL.Query().Get("sort_by"),
	}

	// Validate and normalize sort_dir to only accept "asc" or "desc"
	sortDir := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sort_dir")))
	if sortDir == "asc" || sortDir == "desc" {
		params.SortDir = sortDir
	}

	return params
}

// parseDateParam parses a date-only query parameter, accepting YYYY-MM-DD
// and falling back to RFC 3339.
func parseDateParam(r *http.Request, name string) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// decodeJSON decodes a size-limited JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, MsgInvalidRequestBody)
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, log the error
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// writeError writes an error response in the standard format
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, models.ErrorResponse(code, message, nil))
}

// writeServiceError maps a service error kind to an HTTP status and
// response body. Conflict errors carry the blocking bookings as details.
func writeServiceError(w http.ResponseWriter, err error) {
	kind := service.KindOf(err)
	switch kind {
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case service.KindBadRequest:
		writeError(w, http.StatusBadRequest, ErrCodeValidationErr, err.Error())
	case service.KindPreconditionFailed:
		writeError(w, http.StatusUnprocessableEntity, ErrCodePrecondition, err.Error())
	case service.KindInvalidTransition:
		writeError(w, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case service.KindConflict:
		conflicts := service.ConflictsOf(err)
		writeJSON(w, http.StatusConflict, models.ErrorResponse(ErrCodeBookingConflict, err.Error(), map[string]any{
			"conflicts": conflicts,
			"summary":   booking.Summary(conflicts),
		}))
	case service.KindDuplicate:
		writeError(w, http.StatusConflict, ErrCodeDuplicateRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, MsgInternalServerError)
	}
}
