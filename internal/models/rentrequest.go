package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentRequestStatus represents the status of a public rent request
type RentRequestStatus string

const (
	RentRequestStatusPending   RentRequestStatus = "PENDING"
	RentRequestStatusReviewed  RentRequestStatus = "REVIEWED"
	RentRequestStatusApproved  RentRequestStatus = "APPROVED"
	RentRequestStatusRejected  RentRequestStatus = "REJECTED"
	RentRequestStatusContacted RentRequestStatus = "CONTACTED"
	RentRequestStatusConfirmed RentRequestStatus = "CONFIRMED"
)

// ValidRentRequestStatuses contains all valid rent-request status values
var ValidRentRequestStatuses = map[RentRequestStatus]bool{
	RentRequestStatusPending:   true,
	RentRequestStatusReviewed:  true,
	RentRequestStatusApproved:  true,
	RentRequestStatusRejected:  true,
	RentRequestStatusContacted: true,
	RentRequestStatusConfirmed: true,
}

// RentRequestTransitions defines the legal rent-request status transitions.
// REJECTED and CONFIRMED are terminal. REJECTED stays reachable from every
// non-terminal state so admins always have an escape hatch.
var RentRequestTransitions = map[RentRequestStatus][]RentRequestStatus{
	RentRequestStatusPending:   {RentRequestStatusReviewed, RentRequestStatusApproved, RentRequestStatusRejected, RentRequestStatusContacted},
	RentRequestStatusReviewed:  {RentRequestStatusApproved, RentRequestStatusRejected, RentRequestStatusContacted},
	RentRequestStatusContacted: {RentRequestStatusApproved, RentRequestStatusRejected},
	RentRequestStatusApproved:  {RentRequestStatusConfirmed, RentRequestStatusRejected},
	RentRequestStatusRejected:  {},
	RentRequestStatusConfirmed: {},
}

// CanTransitionTo checks if a transition is valid
func (s RentRequestStatus) CanTransitionTo(target RentRequestStatus) bool {
	allowed, ok := RentRequestTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions
func (s RentRequestStatus) IsTerminal() bool {
	return s == RentRequestStatusRejected || s == RentRequestStatusConfirmed
}

// Blocks reports whether a rent request in this status binds vehicle
// availability. Only APPROVED and CONFIRMED block.
func (s RentRequestStatus) Blocks() bool {
	return s == RentRequestStatusApproved || s == RentRequestStatusConfirmed
}

// RentRequest represents a public booking request for a vehicle.
// Vehicle fields are snapshotted at intake and immutable thereafter.
type RentRequest struct {
	ID          int64  `json:"id"`
	RequestID   string `json:"request_id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	VehicleID   int64  `json:"vehicle_id"`

	// Vehicle snapshot captured at intake
	VehicleMake        string          `json:"vehicle_make"`
	VehicleModel       string          `json:"vehicle_model"`
	VehicleYear        int             `json:"vehicle_year"`
	VehiclePricePerDay decimal.Decimal `json:"vehicle_price_per_day"`
	VehicleCurrency    string          `json:"vehicle_currency"`

	StartDate  time.Time         `json:"start_date"`
	EndDate    time.Time         `json:"end_date"`
	Message    string            `json:"message,omitempty"`
	Status     RentRequestStatus `json:"status"`
	AdminNotes string            `json:"admin_notes,omitempty"`
	ReviewedBy string            `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// RentRequestStatusHistory is an append-only audit row for a status change
type RentRequestStatusHistory struct {
	ID        int64             `json:"id"`
	RequestID string            `json:"request_id"`
	OldStatus RentRequestStatus `json:"old_status"`
	NewStatus RentRequestStatus `json:"new_status"`
	ChangedBy string            `json:"changed_by"`
	Notes     string            `json:"notes,omitempty"`
	ChangedAt time.Time         `json:"changed_at"`
}

// CreateRentRequestRequest represents the public intake payload
type CreateRentRequestRequest struct {
	ClientName  string    `json:"client_name" validate:"required"`
	ClientEmail string    `json:"client_email" validate:"required,email"`
	ClientPhone string    `json:"client_phone" validate:"required"`
	VehicleID   int64     `json:"vehicle_id" validate:"required,gt=0"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Message     string    `json:"message,omitempty"`
}

// UpdateRentRequestStatusRequest represents an admin status change
type UpdateRentRequestStatusRequest struct {
	Status     RentRequestStatus `json:"status" validate:"required"`
	AdminNotes string            `json:"admin_notes,omitempty"`
}

// RentRequestFilter holds admin list filters
type RentRequestFilter struct {
	Status    *RentRequestStatus `json:"status,omitempty"`
	VehicleID *int64             `json:"vehicle_id,omitempty"`
}

// RentRequestResponse represents the API response for a rent request
type RentRequestResponse struct {
	ID                 int64             `json:"id"`
	RequestID          string            `json:"request_id"`
	ClientName         string            `json:"client_name"`
	ClientEmail        string            `json:"client_email"`
	ClientPhone        string            `json:"client_phone"`
	VehicleID          int64             `json:"vehicle_id"`
	VehicleMake        string            `json:"vehicle_make"`
	VehicleModel       string            `json:"vehicle_model"`
	VehicleYear        int               `json:"vehicle_year"`
	VehiclePricePerDay decimal.Decimal   `json:"vehicle_price_per_day"`
	VehicleCurrency    string            `json:"vehicle_currency"`
	StartDate          time.Time         `json:"start_date"`
	EndDate            time.Time         `json:"end_date"`
	Message            string            `json:"message,omitempty"`
	Status             RentRequestStatus `json:"status"`
	AdminNotes         string            `json:"admin_notes,omitempty"`
	ReviewedBy         string            `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// ToResponse converts a RentRequest to RentRequestResponse
func (r *RentRequest) ToResponse() RentRequestResponse {
	if r == nil {
		return RentRequestResponse{}
	}
	return RentRequestResponse{
		ID:                 r.ID,
		RequestID:          r.RequestID,
		ClientName:         r.ClientName,
		ClientEmail:        r.ClientEmail,
		ClientPhone:        r.ClientPhone,
		VehicleID:          r.VehicleID,
		VehicleMake:        r.VehicleMake,
		VehicleModel:       r.VehicleModel,
		VehicleYear:        r.VehicleYear,
		VehiclePricePerDay: r.VehiclePricePerDay,
		VehicleCurrency:    r.VehicleCurrency,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		Message:            r.Message,
		Status:             r.Status,
		AdminNotes:         r.AdminNotes,
		ReviewedBy:         r.ReviewedBy,
		ReviewedAt:         r.ReviewedAt,
		CreatedAt:          r.CreatedAt,
	}
}
