// Package booking owns vehicle availability: the inclusive overlap
// predicate, the blocking-status sets and the unified conflict detector
// used by both the contract and rent-request paths. No other package may
// encode these rules.
package booking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

// Querier abstracts *sql.DB and *sql.Tx. Callers performing a
// check-then-write must pass their transaction so the availability check
// and the write are atomic.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ConflictKind distinguishes the two booking artifacts
type ConflictKind string

const (
	ConflictKindContract    ConflictKind = "CONTRACT"
	ConflictKindRentRequest ConflictKind = "RENT_REQUEST"
)

// ContractBlockingStatuses are the contract statuses that bind availability.
// PENDING contracts do not block so draft contracts can be composed.
var ContractBlockingStatuses = []models.ContractStatus{
	models.ContractStatusConfirmed,
	models.ContractStatusActive,
}

// RequestBlockingStatuses are the rent-request statuses that bind availability
var RequestBlockingStatuses = []models.RentRequestStatus{
	models.RentRequestStatusApproved,
	models.RentRequestStatusConfirmed,
}

// Overlaps reports whether [aStart,aEnd] and [bStart,bEnd] overlap.
// Both endpoints are inclusive: a booking ending on day D conflicts with
// one starting on day D.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// Conflict describes one booking blocking a candidate interval
type Conflict struct {
	Kind       ConflictKind `json:"kind"`
	ID         int64        `json:"id"`
	Identifier string       `json:"identifier"`
	VehicleID  int64        `json:"vehicle_id"`
	StartDate  time.Time    `json:"start_date"`
	EndDate    time.Time    `json:"end_date"`
	Status     string       `json:"status"`
	ClientName string       `json:"client_name"`
}

// Availability is the result of a conflict check
type Availability struct {
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts"`
}

// Approvability is the bulk-check result for one rent request
type Approvability struct {
	Approvable bool       `json:"approvable"`
	Conflicts  []Conflict `json:"conflicts"`
}

// CheckOptions carries the optional excludes for a conflict check
type CheckOptions struct {
	ExcludeContractID int64  // 0 means none
	ExcludeRequestID  string // empty means none
}

// ConflictSource is the repository surface the detector queries.
// Implementations must filter by the blocking-status sets above and use
// the inclusive predicate start <= :end AND end >= :start.
type ConflictSource interface {
	// FindConflictingContracts returns blocking contracts overlapping
	// [start,end] on the vehicle, excluding excludeID when non-zero.
	FindConflictingContracts(ctx context.Context, q Querier, vehicleID int64, start, end time.Time, excludeID int64) ([]Conflict, error)
	// FindConflictingRequests returns blocking rent requests overlapping
	// [start,end] on the vehicle, excluding excludeRequestID when non-empty.
	FindConflictingRequests(ctx context.Context, q Querier, vehicleID int64, start, end time.Time, excludeRequestID string) ([]Conflict, error)
	// BulkFindConflicts fetches every potentially blocking contract and
	// rent request for the vehicles within [minStart,maxEnd] in two
	// queries.
	BulkFindConflicts(ctx context.Context, vehicleIDs []int64, minStart, maxEnd time.Time) (contracts []Conflict, requests []Conflict, err error)
}

// Detector is the single source of truth for "is vehicle V free during
// [s,e]?" across contracts and rent requests.
type Detector struct {
	src ConflictSource
}

// NewDetector creates a Detector over the given conflict source
func NewDetector(src ConflictSource) *Detector {
	return &Detector{src: src}
}

// IsAvailable checks a candidate interval against blocking contracts and
// rent requests. When q is a transaction the queries run inside it.
func (d *Detector) IsAvailable(ctx context.Context, q Querier, vehicleID int64, start, end time.Time, opts CheckOptions) (Availability, error) {
	contracts, err := d.src.FindConflictingContracts(ctx, q, vehicleID, start, end, opts.ExcludeContractID)
	if err != nil {
		return Availability{}, fmt.Errorf("find conflicting contracts: %w", err)
	}
	requests, err := d.src.FindConflictingRequests(ctx, q, vehicleID, start, end, opts.ExcludeRequestID)
	if err != nil {
		return Availability{}, fmt.Errorf("find conflicting rent requests: %w", err)
	}

	conflicts := append(contracts, requests...)
	return Availability{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// ApprovabilityOf computes, for a page of rent requests, whether approving
// each one would succeed right now. Non-PENDING requests are reported as
// non-approvable with no conflicts. All candidate conflicts are fetched in
// two queries and matched in memory per vehicle.
func (d *Detector) ApprovabilityOf(ctx context.Context, requests []models.RentRequest) (map[string]Approvability, error) {
	result := make(map[string]Approvability, len(requests))

	var pending []models.RentRequest
	for _, r := range requests {
		if r.Status != models.RentRequestStatusPending {
			result[r.RequestID] = Approvability{Approvable: false, Conflicts: nil}
			continue
		}
		pending = append(pending, r)
	}
	if len(pending) == 0 {
		return result, nil
	}

	minStart, maxEnd := pending[0].StartDate, pending[0].EndDate
	vehicleSet := make(map[int64]bool)
	for _, r := range pending {
		if r.StartDate.Before(minStart) {
			minStart = r.StartDate
		}
		if r.EndDate.After(maxEnd) {
			maxEnd = r.EndDate
		}
		vehicleSet[r.VehicleID] = true
	}
	vehicleIDs := make([]int64, 0, len(vehicleSet))
	for id := range vehicleSet {
		vehicleIDs = append(vehicleIDs, id)
	}

	contracts, reqConflicts, err := d.src.BulkFindConflicts(ctx, vehicleIDs, minStart, maxEnd)
	if err != nil {
		return nil, fmt.Errorf("bulk find conflicts: %w", err)
	}

	contractsByVehicle := groupByVehicle(contracts)
	requestsByVehicle := groupByVehicle(reqConflicts)

	for _, r := range pending {
		var conflicts []Conflict
		for _, c := range contractsByVehicle[r.VehicleID] {
			if Overlaps(r.StartDate, r.EndDate, c.StartDate, c.EndDate) {
				conflicts = append(conflicts, c)
			}
		}
		for _, c := range requestsByVehicle[r.VehicleID] {
			if c.Identifier == r.RequestID {
				continue // self
			}
			if Overlaps(r.StartDate, r.EndDate, c.StartDate, c.EndDate) {
				conflicts = append(conflicts, c)
			}
		}
		result[r.RequestID] = Approvability{
			Approvable: len(conflicts) == 0,
			Conflicts:  conflicts,
		}
	}

	return result, nil
}

func groupByVehicle(conflicts []Conflict) map[int64][]Conflict {
	byVehicle := make(map[int64][]Conflict)
	for _, c := range conflicts {
		byVehicle[c.VehicleID] = append(byVehicle[c.VehicleID], c)
	}
	return byVehicle
}

// Summary renders the conflict list for UIs and emails:
// "CONTRACT CNT20250001 (Jean Dupont), RENT_REQUEST REQ_... (Marie Curie)"
func Summary(conflicts []Conflict) string {
	parts := make([]string, len(conflicts))
	for i, c := range conflicts {
		parts[i] = fmt.Sprintf("%s %s (%s)", c.Kind, c.Identifier, c.ClientName)
	}
	return strings.Join(parts, ", ")
}
