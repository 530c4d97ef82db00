package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType represents a rental service category a vehicle can be booked for
type ServiceType string

const (
	ServiceTypeIndividual ServiceType = "INDIVIDUAL"
	ServiceTypeEvents     ServiceType = "EVENTS"
	ServiceTypeEnterprise ServiceType = "ENTERPRISE"
)

// ValidServiceTypes contains all valid service type values
var ValidServiceTypes = map[ServiceType]bool{
	ServiceTypeIndividual: true,
	ServiceTypeEvents:     true,
	ServiceTypeEnterprise: true,
}

// Vehicle represents a rentable vehicle.
// The Booking Core treats vehicles as read-only: catalog CRUD lives elsewhere.
type Vehicle struct {
	ID           int64           `json:"id"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	LicensePlate string          `json:"license_plate"`
	VIN          *string         `json:"vin,omitempty"`
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	Currency     string          `json:"currency"`
	// Availability is the operator-controlled flag; a vehicle with
	// Availability=false cannot be bound to any new contract regardless
	// of free dates.
	Availability bool          `json:"availability"`
	IsActive     bool          `json:"is_active"`
	ServiceTypes []ServiceType `json:"service_types"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// SupportsServiceType reports whether the vehicle advertises the given service type
func (v *Vehicle) SupportsServiceType(st ServiceType) bool {
	for _, s := range v.ServiceTypes {
		if s == st {
			return true
		}
	}
	return false
}

// DisplayName returns "Make Model Year" for notifications and conflict summaries
func (v *Vehicle) DisplayName() string {
	if v == nil {
		return ""
	}
	return v.Make + " " + v.Model
}

// VehicleResponse represents the API response for a vehicle
type VehicleResponse struct {
	ID           int64           `json:"id"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         int             `json:"year"`
	LicensePlate string          `json:"license_plate"`
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	Currency     string          `json:"currency"`
	Availability bool            `json:"availability"`
	ServiceTypes []ServiceType   `json:"service_types"`
}

// ToResponse converts a Vehicle to VehicleResponse
func (v *Vehicle) ToResponse() VehicleResponse {
	if v == nil {
		return VehicleResponse{}
	}
	return VehicleResponse{
		ID:           v.ID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		PricePerDay:  v.PricePerDay,
		Currency:     v.Currency,
		Availability: v.Availability,
		ServiceTypes: v.ServiceTypes,
	}
}
