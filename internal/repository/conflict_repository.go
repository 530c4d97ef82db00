package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
)

// ConflictRepository implements booking.ConflictSource over Oracle.
// The blocking-status sets are bound from the booking package so the
// SQL never re-encodes them; the interval predicate is the inclusive
// start_date <= :end AND end_date >= :start from the same package.
type ConflictRepository struct {
	db *sql.DB
}

// NewConflictRepository creates a new ConflictRepository
func NewConflictRepository(db *sql.DB) *ConflictRepository {
	if db == nil {
		panic("ConflictRepository: db is nil")
	}
	return &ConflictRepository{db: db}
}

// FindConflictingContracts returns blocking contracts overlapping
// [start,end] on the vehicle. When excludeID is non-zero that contract is
// skipped (used by updates and re-confirmation).
func (r *ConflictRepository) FindConflictingContracts(ctx context.Context, q Querier, vehicleID int64, start, end time.Time, excludeID int64) ([]booking.Conflict, error) {
	if q == nil {
		q = r.db
	}

	statuses := NewInClauseBuilder(3)
	for _, s := range booking.ContractBlockingStatuses {
		statuses.Add(string(s))
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.contract_number, c.vehicle_id, c.start_date, c.end_date, c.status,
			TRIM(cl.prenom || ' ' || cl.nom)
		FROM contracts c
		JOIN clients cl ON cl.id = c.client_id
		WHERE c.vehicle_id = :1
			AND c.status IN (%s)
			AND c.start_date <= :%d AND c.end_date >= :%d`,
		statuses.Placeholders(), statuses.NextIndex(), statuses.NextIndex()+1)

	args := append([]any{vehicleID}, statuses.Args()...)
	args = append(args, end, start)

	if excludeID != 0 {
		query += fmt.Sprintf(" AND c.id != :%d", statuses.NextIndex()+2)
		args = append(args, excludeID)
	}
	query += " ORDER BY c.start_date"

	return r.queryConflicts(ctx, q, booking.ConflictKindContract, query, args...)
}

// FindConflictingRequests returns blocking rent requests overlapping
// [start,end] on the vehicle. When excludeRequestID is non-empty that
// request is skipped (a request never conflicts with itself on approval).
func (r *ConflictRepository) FindConflictingRequests(ctx context.Context, q Querier, vehicleID int64, start, end time.Time, excludeRequestID string) ([]booking.Conflict, error) {
	if q == nil {
		q = r.db
	}

	statuses := NewInClauseBuilder(3)
	for _, s := range booking.RequestBlockingStatuses {
		statuses.Add(string(s))
	}

	query := fmt.Sprintf(`
		SELECT rr.id, rr.request_id, rr.vehicle_id, rr.start_date, rr.end_date, rr.status,
			rr.client_name
		FROM rent_requests rr
		WHERE rr.vehicle_id = :1
			AND rr.status IN (%s)
			AND rr.start_date <= :%d AND rr.end_date >= :%d`,
		statuses.Placeholders(), statuses.NextIndex(), statuses.NextIndex()+1)

	args := append([]any{vehicleID}, statuses.Args()...)
	args = append(args, end, start)

	if excludeRequestID != "" {
		query += fmt.Sprintf(" AND rr.request_id != :%d", statuses.NextIndex()+2)
		args = append(args, excludeRequestID)
	}
	query += " ORDER BY rr.start_date"

	return r.queryConflicts(ctx, q, booking.ConflictKindRentRequest, query, args...)
}

// BulkFindConflicts fetches every potentially blocking contract and rent
// request for the given vehicles within [minStart,maxEnd] in two queries.
// Vehicle lists above the Oracle IN limit are chunked.
func (r *ConflictRepository) BulkFindConflicts(ctx context.Context, vehicleIDs []int64, minStart, maxEnd time.Time) ([]booking.Conflict, []booking.Conflict, error) {
	var contracts, requests []booking.Conflict

	for _, chunk := range ChunkSlice(vehicleIDs, MaxInClauseSize) {
		vehicles := NewInClauseBuilder(1)
		for _, id := range chunk {
			vehicles.Add(id)
		}

		statuses := NewInClauseBuilder(vehicles.NextIndex())
		for _, s := range booking.ContractBlockingStatuses {
			statuses.Add(string(s))
		}

		contractQuery := fmt.Sprintf(`
			SELECT c.id, c.contract_number, c.vehicle_id, c.start_date, c.end_date, c.status,
				TRIM(cl.prenom || ' ' || cl.nom)
			FROM contracts c
			JOIN clients cl ON cl.id = c.client_id
			WHERE c.vehicle_id IN (%s)
				AND c.status IN (%s)
				AND c.start_date <= :%d AND c.end_date >= :%d`,
			vehicles.Placeholders(), statuses.Placeholders(),
			statuses.NextIndex(), statuses.NextIndex()+1)

		args := append(vehicles.Args(), statuses.Args()...)
		args = append(args, maxEnd, minStart)

		chunkContracts, err := r.queryConflicts(ctx, r.db, booking.ConflictKindContract, contractQuery, args...)
		if err != nil {
			return nil, nil, err
		}
		contracts = append(contracts, chunkContracts...)

		reqStatuses := NewInClauseBuilder(vehicles.NextIndex())
		for _, s := range booking.RequestBlockingStatuses {
			reqStatuses.Add(string(s))
		}

		requestQuery := fmt.Sprintf(`
			SELECT rr.id, rr.request_id, rr.vehicle_id, rr.start_date, rr.end_date, rr.status,
				rr.client_name
			FROM rent_requests rr
			WHERE rr.vehicle_id IN (%s)
				AND rr.status IN (%s)
				AND rr.start_date <= :%d AND rr.end_date >= :%d`,
			vehicles.Placeholders(), reqStatuses.Placeholders(),
			reqStatuses.NextIndex(), reqStatuses.NextIndex()+1)

		reqArgs := append(vehicles.Args(), reqStatuses.Args()...)
		reqArgs = append(reqArgs, maxEnd, minStart)

		chunkRequests, err := r.queryConflicts(ctx, r.db, booking.ConflictKindRentRequest, requestQuery, reqArgs...)
		if err != nil {
			return nil, nil, err
		}
		requests = append(requests, chunkRequests...)
	}

	return contracts, requests, nil
}

func (r *ConflictRepository) queryConflicts(ctx context.Context, q Querier, kind booking.ConflictKind, query string, args ...any) ([]booking.Conflict, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conflicts: %w", classifyOracleError(err))
	}
	defer rows.Close()

	var conflicts []booking.Conflict
	for rows.Next() {
		var c booking.Conflict
		var clientName sql.NullString
		if err := rows.Scan(&c.ID, &c.Identifier, &c.VehicleID, &c.StartDate, &c.EndDate, &c.Status, &clientName); err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		c.Kind = kind
		c.ClientName = StringFromNull(clientName)
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conflicts: %w", err)
	}
	return conflicts, nil
}
