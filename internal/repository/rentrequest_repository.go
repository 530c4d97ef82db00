package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

// RentRequestRepository handles rent-request data access
type RentRequestRepository struct {
	db *sql.DB
}

// NewRentRequestRepository creates a new RentRequestRepository
func NewRentRequestRepository(db *sql.DB) *RentRequestRepository {
	if db == nil {
		panic("RentRequestRepository: db is nil")
	}
	return &RentRequestRepository{db: db}
}

// WithTx runs fn inside a serializable transaction
func (r *RentRequestRepository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return RunInTx(ctx, r.db, SerializableTxOptions, fn)
}

// DB exposes the pool for callers that run outside a transaction
func (r *RentRequestRepository) DB() Querier { return r.db }

const rentRequestColumns = `rr.id, rr.request_id, rr.client_name, rr.client_email, rr.client_phone,
		rr.vehicle_id, rr.vehicle_make, rr.vehicle_model, rr.vehicle_year,
		rr.vehicle_price_per_day, rr.vehicle_currency,
		rr.start_date, rr.end_date, rr.message, rr.status,
		rr.admin_notes, rr.reviewed_by, rr.reviewed_at, rr.created_at`

type rentRequestScanDest struct {
	request                        models.RentRequest
	pricePerDay                    float64
	message, adminNotes, reviewedBy sql.NullString
	reviewedAt, createdAt          sql.NullTime
}

func (d *rentRequestScanDest) scanArgs() []any {
	return []any{
		&d.request.ID, &d.request.RequestID, &d.request.ClientName, &d.request.ClientEmail, &d.request.ClientPhone,
		&d.request.VehicleID, &d.request.VehicleMake, &d.request.VehicleModel, &d.request.VehicleYear,
		&d.pricePerDay, &d.request.VehicleCurrency,
		&d.request.StartDate, &d.request.EndDate, &d.message, &d.request.Status,
		&d.adminNotes, &d.reviewedBy, &d.reviewedAt, &d.createdAt,
	}
}

func (d *rentRequestScanDest) toRentRequest() models.RentRequest {
	d.request.VehiclePricePerDay = decimal.NewFromFloat(d.pricePerDay).Round(2)
	d.request.Message = StringFromNull(d.message)
	d.request.AdminNotes = StringFromNull(d.adminNotes)
	d.request.ReviewedBy = StringFromNull(d.reviewedBy)
	d.request.ReviewedAt = TimeFromNull(d.reviewedAt)
	d.request.CreatedAt = TimeValueFromNull(d.createdAt)
	return d.request
}

// Insert inserts a rent request with its vehicle snapshot through q
func (r *RentRequestRepository) Insert(ctx context.Context, q Querier, rr *models.RentRequest) error {
	if q == nil {
		q = r.db
	}
	query := `
		INSERT INTO rent_requests (
			request_id, client_name, client_email, client_phone,
			vehicle_id, vehicle_make, vehicle_model, vehicle_year,
			vehicle_price_per_day, vehicle_currency,
			start_date, end_date, message, status, created_at
		) VALUES (
			:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13, :14, CURRENT_TIMESTAMP
		) RETURNING id INTO :15`

	var id int64
	_, err := q.ExecContext(ctx, query,
		rr.RequestID, rr.ClientName, rr.ClientEmail, rr.ClientPhone,
		rr.VehicleID, rr.VehicleMake, rr.VehicleModel, rr.VehicleYear,
		rr.VehiclePricePerDay.InexactFloat64(), rr.VehicleCurrency,
		rr.StartDate, rr.EndDate, NullableString(rr.Message), string(rr.Status),
		sql.Out{Dest: &id},
	)
	if err != nil {
		return fmt.Errorf("failed to insert rent request: %w", classifyOracleError(err))
	}
	rr.ID = id
	return nil
}

// GetByRequestID retrieves a rent request by its public request identifier
func (r *RentRequestRepository) GetByRequestID(ctx context.Context, q Querier, requestID string) (*models.RentRequest, error) {
	if q == nil {
		q = r.db
	}
	query := `
		SELECT ` + rentRequestColumns + `
		FROM rent_requests rr
		WHERE rr.request_id = :1`

	var dest rentRequestScanDest
	err := q.QueryRowContext(ctx, query, requestID).Scan(dest.scanArgs()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rent request: %w", err)
	}
	request := dest.toRentRequest()
	return &request, nil
}

// rentRequestAllowedSorts defines valid sort columns for rent-request listing
var rentRequestAllowedSorts = map[string]bool{
	"created_at": true,
	"start_date": true,
	"end_date":   true,
	"status":     true,
}

// List retrieves rent requests with filters and pagination
func (r *RentRequestRepository) List(ctx context.Context, filter models.RentRequestFilter, params models.PaginationParams, search models.SearchParams) ([]models.RentRequest, int, error) {
	qb := NewQueryBuilder(1)
	if filter.Status != nil {
		qb.AddCondition("rr.status = :%d", string(*filter.Status))
	}
	if filter.VehicleID != nil {
		qb.AddCondition("rr.vehicle_id = :%d", *filter.VehicleID)
	}
	if search.Query != "" {
		qb.AddCondition("UPPER(rr.client_name || ' ' || rr.client_email) LIKE UPPER(:%d)", "%"+search.Query+"%")
	}

	countQuery := `SELECT COUNT(*) FROM rent_requests rr WHERE 1 = 1` + qb.WhereClause()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, qb.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rent requests: %w", err)
	}

	sortBy, sortDir := getSortClause(search.SortBy, search.SortDir, rentRequestAllowedSorts, "created_at")
	query := fmt.Sprintf(`
		SELECT %s
		FROM rent_requests rr
		WHERE 1 = 1%s
		ORDER BY rr.%s %s
		OFFSET :%d ROWS FETCH NEXT :%d ROWS ONLY`,
		rentRequestColumns, qb.WhereClause(), sortBy, sortDir,
		qb.NextIndex(), qb.NextIndex()+1)

	args := append(qb.Args(), params.Offset(), params.Limit())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rent requests: %w", err)
	}
	defer rows.Close()

	var requests []models.RentRequest
	for rows.Next() {
		var dest rentRequestScanDest
		if err := rows.Scan(dest.scanArgs()...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan rent request: %w", err)
		}
		requests = append(requests, dest.toRentRequest())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate rent requests: %w", err)
	}
	return requests, total, nil
}

// UpdateStatusGuarded transitions requestID from expected to target in one
// guarded statement, recording the reviewer. Returns false when the row
// was not in the expected status.
func (r *RentRequestRepository) UpdateStatusGuarded(ctx context.Context, q Querier, requestID string, expected, target models.RentRequestStatus, adminNotes, reviewedBy string, reviewedAt time.Time) (bool, error) {
	if q == nil {
		q = r.db
	}
	query := `
		UPDATE rent_requests SET
			status = :1, admin_notes = :2, reviewed_by = :3, reviewed_at = :4
		WHERE request_id = :5 AND status = :6`

	result, err := q.ExecContext(ctx, query,
		string(target), NullableString(adminNotes), NullableString(reviewedBy), reviewedAt,
		requestID, string(expected),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update rent request status: %w", classifyOracleError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf(errFmtRowsAffected, err)
	}
	return rowsAffected > 0, nil
}

// HasRecentDuplicate reports whether a non-rejected request with the same
// email (case-insensitive), vehicle and dates was created after since.
func (r *RentRequestRepository) HasRecentDuplicate(ctx context.Context, email string, vehicleID int64, start, end, since time.Time) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM rent_requests rr
		WHERE LOWER(rr.client_email) = LOWER(:1)
			AND rr.vehicle_id = :2
			AND rr.start_date = :3 AND rr.end_date = :4
			AND rr.status != 'REJECTED'
			AND rr.created_at >= :5`

	var count int
	if err := r.db.QueryRowContext(ctx, query, email, vehicleID, start, end, since).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check duplicate rent request: %w", err)
	}
	return count > 0, nil
}

// ListPendingCreatedBefore returns the request IDs of PENDING requests
// created before cutoff, oldest first, at most limit rows.
func (r *RentRequestRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	query := `
		SELECT rr.request_id
		FROM rent_requests rr
		WHERE rr.status = 'PENDING' AND rr.created_at < :1
		ORDER BY rr.created_at
		FETCH FIRST :2 ROWS ONLY`

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expirable rent requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan request id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request ids: %w", err)
	}
	return ids, nil
}

// ExpireMany rejects the listed requests in one guarded statement per
// chunk. The status guard keeps re-runs and racing admin reviews safe.
func (r *RentRequestRepository) ExpireMany(ctx context.Context, q Querier, requestIDs []string, note, reviewedBy string, reviewedAt time.Time) (int64, error) {
	if q == nil {
		q = r.db
	}
	var total int64
	for _, chunk := range ChunkSlice(requestIDs, MaxInClauseSize) {
		in := NewInClauseBuilder(4)
		for _, id := range chunk {
			in.Add(id)
		}
		query := fmt.Sprintf(`
			UPDATE rent_requests SET
				status = 'REJECTED', admin_notes = :1, reviewed_by = :2, reviewed_at = :3
			WHERE status = 'PENDING' AND request_id IN (%s)`, in.Placeholders())

		args := append([]any{NullableString(note), reviewedBy, reviewedAt}, in.Args()...)
		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("failed to expire rent requests: %w", classifyOracleError(err))
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf(errFmtRowsAffected, err)
		}
		total += rowsAffected
	}
	return total, nil
}

// AppendHistory appends an audit row for a status change
func (r *RentRequestRepository) AppendHistory(ctx context.Context, q Querier, h *models.RentRequestStatusHistory) error {
	if q == nil {
		q = r.db
	}
	query := `
		INSERT INTO rent_request_status_history (
			request_id, old_status, new_status, changed_by, notes, changed_at
		) VALUES (:1, :2, :3, :4, :5, :6)`

	_, err := q.ExecContext(ctx, query,
		h.RequestID, string(h.OldStatus), string(h.NewStatus),
		h.ChangedBy, NullableString(h.Notes), h.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", classifyOracleError(err))
	}
	return nil
}

// HistoryFor returns the audit trail for a request, oldest first
func (r *RentRequestRepository) HistoryFor(ctx context.Context, requestID string) ([]models.RentRequestStatusHistory, error) {
	query := `
		SELECT h.id, h.request_id, h.old_status, h.new_status, h.changed_by, h.notes, h.changed_at
		FROM rent_request_status_history h
		WHERE h.request_id = :1
		ORDER BY h.changed_at, h.id`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	defer rows.Close()

	var history []models.RentRequestStatusHistory
	for rows.Next() {
		var h models.RentRequestStatusHistory
		var notes sql.NullString
		if err := rows.Scan(&h.ID, &h.RequestID, &h.OldStatus, &h.NewStatus, &h.ChangedBy, &notes, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		h.Notes = StringFromNull(notes)
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}
	return history, nil
}

// Delete removes a rent request and its history
func (r *RentRequestRepository) Delete(ctx context.Context, requestID string) error {
	return RunInTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rent_request_status_history WHERE request_id = :1`, requestID); err != nil {
			return fmt.Errorf("failed to delete status history: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM rent_requests WHERE request_id = :1`, requestID)
		if err != nil {
			return fmt.Errorf("failed to delete rent request: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf(errFmtRowsAffected, err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
