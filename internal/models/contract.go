package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus represents the status of a rental contract
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "PENDING"
	ContractStatusConfirmed ContractStatus = "CONFIRMED"
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// ValidContractStatuses contains all valid contract status values
var ValidContractStatuses = map[ContractStatus]bool{
	ContractStatusPending:   true,
	ContractStatusConfirmed: true,
	ContractStatusActive:    true,
	ContractStatusCompleted: true,
	ContractStatusCancelled: true,
}

// ContractTransitions defines the legal contract status transitions.
// COMPLETED and CANCELLED are terminal; CANCELLED is additionally frozen
// for payment updates.
var ContractTransitions = map[ContractStatus][]ContractStatus{
	ContractStatusPending:   {ContractStatusConfirmed, ContractStatusCancelled},
	ContractStatusConfirmed: {ContractStatusActive, ContractStatusCancelled},
	ContractStatusActive:    {ContractStatusCompleted, ContractStatusCancelled},
	ContractStatusCompleted: {},
	ContractStatusCancelled: {},
}

// CanTransitionTo checks if a transition is valid
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	allowed, ok := ContractTransitions[s]
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
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// PaymentStatus represents payment progress on a contract
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// DerivePaymentStatus maps a paid amount to its payment status bucket:
// zero is PENDING, the full total is PAID, anything in between is PARTIAL.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return PaymentStatusPending
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}

// ContractAccessory represents an accessory line on a contract.
// Accessories are exclusively owned by their contract; deletion cascades.
type ContractAccessory struct {
	ID         int64           `json:"id"`
	ContractID int64           `json:"contract_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// LineTotal returns unit price times quantity
func (a ContractAccessory) LineTotal() decimal.Decimal {
	return a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity)))
}

// Contract represents a rental contract binding a vehicle for a date interval
type Contract struct {
	ID             int64    `json:"id"`
	ContractNumber string   `json:"contract_number"`
	ClientID       int64    `json:"client_id"`
	Client         *Client  `json:"client,omitempty"`
	VehicleID      int64    `json:"vehicle_id"`
	Vehicle        *Vehicle `json:"vehicle,omitempty"`
	AdminID        int64    `json:"admin_id"`
	// StartDate and EndDate are date-only: stored at local midnight and
	// compared at day granularity. EndDate is inclusive for overlap checks.
	StartDate        time.Time           `json:"start_date"`
	EndDate          time.Time           `json:"end_date"`
	TotalDays        int                 `json:"total_days"`
	ServiceType      ServiceType         `json:"service_type"`
	DailyRate        decimal.Decimal     `json:"daily_rate"`
	Accessories      []ContractAccessory `json:"accessories,omitempty"`
	AccessoriesTotal decimal.Decimal     `json:"accessories_total"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	PaidAmount       decimal.Decimal     `json:"paid_amount"`
	PaymentStatus    PaymentStatus       `json:"payment_status"`
	Status           ContractStatus      `json:"status"`
	Notes            string              `json:"notes,omitempty"`
	PickupLocation   string              `json:"pickup_location,omitempty"`
	DropoffLocation  string              `json:"dropoff_location,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// DateOnly normalises a timestamp to local midnight
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RentalDays counts the calendar days from start to end using the date
// parts only. The arithmetic happens in UTC so DST shifts in the input
// location cannot change the count.
func RentalDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

// ComputeDerived recomputes every derived field from its inputs:
// totalDays, accessoriesTotal, subtotal, totalAmount and paymentStatus.
// Monetary results are rounded to scale 2.
func (c *Contract) ComputeDerived() {
	c.TotalDays = RentalDays(c.StartDate, c.EndDate)

	accessoriesTotal := decimal.Zero
	for _, a := range c.Accessories {
		accessoriesTotal = accessoriesTotal.Add(a.LineTotal())
	}
	c.AccessoriesTotal = accessoriesTotal.Round(2)
	c.Subtotal = c.DailyRate.Mul(decimal.NewFromInt(int64(c.TotalDays))).Round(2)
	c.TotalAmount = c.Subtotal.Add(c.AccessoriesTotal).Sub(c.DiscountAmount).Round(2)
	c.PaymentStatus = DerivePaymentStatus(c.PaidAmount, c.TotalAmount)
}

// AccessoryInput represents an accessory line in a create or update request
type AccessoryInput struct {
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
}

// CreateContractRequest represents the request to create a contract
type CreateContractRequest struct {
	ClientID        int64            `json:"client_id" validate:"required,gt=0"`
	VehicleID       int64            `json:"vehicle_id" validate:"required,gt=0"`
	StartDate       time.Time        `json:"start_date" validate:"required"`
	EndDate         time.Time        `json:"end_date" validate:"required"`
	ServiceType     ServiceType      `json:"service_type" validate:"required,oneof=INDIVIDUAL EVENTS ENTERPRISE"`
	DailyRate       decimal.Decimal  `json:"daily_rate"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	Accessories     []AccessoryInput `json:"accessories,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	PickupLocation  string           `json:"pickup_location,omitempty"`
	DropoffLocation string           `json:"dropoff_location,omitempty"`
}

// UpdateContractRequest represents the request to update a contract.
// Nil fields are left unchanged; Accessories, when supplied, fully
// replace the prior set.
type UpdateContractRequest struct {
	StartDate       *time.Time        `json:"start_date,omitempty"`
	EndDate         *time.Time        `json:"end_date,omitempty"`
	ServiceType     *ServiceType      `json:"service_type,omitempty"`
	DailyRate       *decimal.Decimal  `json:"daily_rate,omitempty"`
	DiscountAmount  *decimal.Decimal  `json:"discount_amount,omitempty"`
	Accessories     *[]AccessoryInput `json:"accessories,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	PickupLocation  *string           `json:"pickup_location,omitempty"`
	DropoffLocation *string           `json:"dropoff_location,omitempty"`
}

// UpdatePaymentRequest represents the request to record a payment amount
type UpdatePaymentRequest struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

// BulkStatusRequest represents the request to transition several contracts at once
type BulkStatusRequest struct {
	ContractIDs []int64        `json:"contract_ids" validate:"required,min=1"`
	Status      ContractStatus `json:"status" validate:"required"`
}

// ContractFilter holds the list filters exposed to admin UIs
type ContractFilter struct {
	Status      *ContractStatus `json:"status,omitempty"`
	ClientID    *int64          `json:"client_id,omitempty"`
	VehicleID   *int64          `json:"vehicle_id,omitempty"`
	ServiceType *ServiceType    `json:"service_type,omitempty"`
	StartAfter  *time.Time      `json:"start_after,omitempty"`
	EndBefore   *time.Time      `json:"end_before,omitempty"`
}

// ContractResponse represents the API response for a contract
type ContractResponse struct {
	ID               int64               `json:"id"`
	ContractNumber   string              `json:"contract_number"`
	ClientID         int64               `json:"client_id"`
	Client           *ClientResponse     `json:"client,omitempty"`
	VehicleID        int64               `json:"vehicle_id"`
	Vehicle          *VehicleResponse    `json:"vehicle,omitempty"`
	AdminID          int64               `json:"admin_id"`
	StartDate        time.Time           `json:"start_date"`
	EndDate          time.Time           `json:"end_date"`
	TotalDays        int                 `json:"total_days"`
	ServiceType      ServiceType         `json:"service_type"`
	DailyRate        decimal.Decimal     `json:"daily_rate"`
	Accessories      []ContractAccessory `json:"accessories,omitempty"`
	AccessoriesTotal decimal.Decimal     `json:"accessories_total"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	PaidAmount       decimal.Decimal     `json:"paid_amount"`
	PaymentStatus    PaymentStatus       `json:"payment_status"`
	Status           ContractStatus      `json:"status"`
	Notes            string              `json:"notes,omitempty"`
	PickupLocation   string              `json:"pickup_location,omitempty"`
	DropoffLocation  string              `json:"dropoff_location,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToResponse converts a Contract to ContractResponse
// Returns empty ContractResponse if receiver is nil
func (c *Contract) ToResponse() ContractResponse {
	if c == nil {
		return ContractResponse{}
	}
	resp := ContractResponse{
		ID:               c.ID,
		ContractNumber:   c.ContractNumber,
		ClientID:         c.ClientID,
		VehicleID:        c.VehicleID,
		AdminID:          c.AdminID,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		TotalDays:        c.TotalDays,
		ServiceType:      c.ServiceType,
		DailyRate:        c.DailyRate,
		Accessories:      c.Accessories,
		AccessoriesTotal: c.AccessoriesTotal,
		Subtotal:         c.Subtotal,
		DiscountAmount:   c.DiscountAmount,
		TotalAmount:      c.TotalAmount,
		PaidAmount:       c.PaidAmount,
		PaymentStatus:    c.PaymentStatus,
		Status:           c.Status,
		Notes:            c.Notes,
		PickupLocation:   c.PickupLocation,
		DropoffLocation:  c.DropoffLocation,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}

	if c.Client != nil {
		clientResp := c.Client.ToResponse()
		resp.Client = &clientResp
	}
	if c.Vehicle != nil {
		vehicleResp := c.Vehicle.ToResponse()
		resp.Vehicle = &vehicleResp
	}

	return resp
}
