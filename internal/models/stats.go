package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStats aggregates contract counts and revenue.
// Revenue figures exclude CANCELLED contracts; status counts include
// every status.
type ContractStats struct {
	TotalContracts     int                             `json:"total_contracts"`
	TotalRevenue       decimal.Decimal                 `json:"total_revenue"`
	PaidRevenue        decimal.Decimal                 `json:"paid_revenue"`
	StatusBreakdown    map[ContractStatus]int          `json:"status_breakdown"`
	ServiceTypeRevenue map[ServiceType]decimal.Decimal `json:"service_type_revenue"`
}

// PeriodTotals holds the aggregates for one comparison window
type PeriodTotals struct {
	Contracts   int             `json:"contracts"`
	Revenue     decimal.Decimal `json:"revenue"`
	PaidRevenue decimal.Decimal `json:"paid_revenue"`
}

// MetricChange carries a percentage change formatted to one decimal
type MetricChange struct {
	ChangePct float64 `json:"change_pct"`
}

// StatsComparison compares the current window [now-P, now] against the
// previous window [now-2P, now-P].
type StatsComparison struct {
	PeriodDays  int          `json:"period_days"`
	Current     PeriodTotals `json:"current"`
	Previous    PeriodTotals `json:"previous"`
	Contracts   MetricChange `json:"contracts"`
	Revenue     MetricChange `json:"revenue"`
	PaidRevenue MetricChange `json:"paid_revenue"`
}

// CalendarEntry is a contract shown on the vehicle calendar
type CalendarEntry struct {
	ContractID     int64          `json:"contract_id"`
	ContractNumber string         `json:"contract_number"`
	Status         ContractStatus `json:"status"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	ClientName     string         `json:"client_name,omitempty"`
}

// CalendarDay is one day of a vehicle month calendar. Contracts lists
// every overlapping contract; IsAvailable is true iff that list is
// empty. End dates are inclusive.
type CalendarDay struct {
	Date        time.Time       `json:"date"`
	Contracts   []CalendarEntry `json:"contracts"`
	IsAvailable bool            `json:"is_available"`
}

// VehicleCalendar is the month view for one vehicle
type VehicleCalendar struct {
	VehicleID int64         `json:"vehicle_id"`
	Month     time.Month    `json:"month"`
	Year      int           `json:"year"`
	Days      []CalendarDay `json:"days"`
}
