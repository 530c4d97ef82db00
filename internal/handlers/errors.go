package handlers

// Error codes
const (
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidationErr      = "VALIDATION_ERROR"
	ErrCodePrecondition       = "PRECONDITION_FAILED"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeBookingConflict    = "BOOKING_CONFLICT"
	ErrCodeDuplicateRequest   = "DUPLICATE_REQUEST"
	ErrCodeNotReady           = "NOT_READY"
)

// Error messages used in HTTP handlers
const (
	MsgInternalServerError  = "internal server error"
	MsgInvalidContractID    = "invalid contract id"
	MsgInvalidVehicleID     = "invalid vehicle id"
	MsgInvalidRequestBody   = "invalid request body"
	MsgInvalidDateRange     = "startDate and endDate are required as YYYY-MM-DD"
	MsgInvalidMonthYear     = "month and year are required"
)
