package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

// ContractRepository handles contract data access
type ContractRepository struct {
	db *sql.DB
}

// NewContractRepository creates a new ContractRepository
func NewContractRepository(db *sql.DB) *ContractRepository {
	if db == nil {
		panic("ContractRepository: db is nil")
	}
	return &ContractRepository{db: db}
}

// WithTx runs fn inside a serializable transaction. Check-then-write
// callers (create, confirm, update dates) must do both sides through the
// supplied tx.
func (r *ContractRepository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return RunInTx(ctx, r.db, SerializableTxOptions, fn)
}

// DB exposes the pool for callers that run outside a transaction
func (r *ContractRepository) DB() Querier { return r.db }

const contractColumns = `c.id, c.contract_number, c.client_id, c.vehicle_id, c.admin_id,
		c.start_date, c.end_date, c.total_days, c.service_type, c.daily_rate,
		c.accessories_total, c.subtotal, c.discount_amount, c.total_amount,
		c.paid_amount, c.payment_status, c.status,
		c.notes, c.pickup_location, c.dropoff_location, c.created_at, c.updated_at`

// contractScanDest holds scan destinations for contract queries.
type contractScanDest struct {
	contract                               models.Contract
	dailyRate, accessoriesTotal, subtotal  float64
	discountAmount, totalAmount, paidAmnt  float64
	notes, pickupLocation, dropoffLocation sql.NullString
	createdAt, updatedAt                   sql.NullTime
}

// scanArgs returns the slice of pointers for sql.Rows.Scan.
func (d *contractScanDest) scanArgs() []any {
	return []any{
		&d.contract.ID, &d.contract.ContractNumber, &d.contract.ClientID, &d.contract.VehicleID, &d.contract.AdminID,
		&d.contract.StartDate, &d.contract.EndDate, &d.contract.TotalDays, &d.contract.ServiceType, &d.dailyRate,
		&d.accessoriesTotal, &d.subtotal, &d.discountAmount, &d.totalAmount,
		&d.paidAmnt, &d.contract.PaymentStatus, &d.contract.Status,
		&d.notes, &d.pickupLocation, &d.dropoffLocation, &d.createdAt, &d.updatedAt,
	}
}

// toContract converts scanned nullable fields to a Contract.
func (d *contractScanDest) toContract() models.Contract {
	d.contract.DailyRate = decimal.NewFromFloat(d.dailyRate).Round(2)
	d.contract.AccessoriesTotal = decimal.NewFromFloat(d.accessoriesTotal).Round(2)
	d.contract.Subtotal = decimal.NewFromFloat(d.subtotal).Round(2)
	d.contract.DiscountAmount = decimal.NewFromFloat(d.discountAmount).Round(2)
	d.contract.TotalAmount = decimal.NewFromFloat(d.totalAmount).Round(2)
	d.contract.PaidAmount = decimal.NewFromFloat(d.paidAmnt).Round(2)
	d.contract.Notes = StringFromNull(d.notes)
	d.contract.PickupLocation = StringFromNull(d.pickupLocation)
	d.contract.DropoffLocation = StringFromNull(d.dropoffLocation)
	d.contract.CreatedAt = TimeValueFromNull(d.createdAt)
	d.contract.UpdatedAt = TimeValueFromNull(d.updatedAt)
	return d.contract
}

// GetByID retrieves a contract by ID with its accessories
func (r *ContractRepository) GetByID(ctx context.Context, q Querier, id int64) (*models.Contract, error) {
	if q == nil {
		q = r.db
	}
	query := `
		SELECT ` + contractColumns + `
		FROM contracts c
		WHERE c.id = :1`

	var dest contractScanDest
	err := q.QueryRowContext(ctx, query, id).Scan(dest.scanArgs()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	contract := dest.toContract()
	accessories, err := r.getAccessories(ctx, q, id)
	if err != nil {
		return nil, err
	}
	contract.Accessories = accessories
	return &contract, nil
}

func (r *ContractRepository) getAccessories(ctx context.Context, q Querier, contractID int64) ([]models.ContractAccessory, error) {
	query := `
		SELECT a.id, a.contract_id, a.name, a.unit_price, a.quantity
		FROM contract_accessories a
		WHERE a.contract_id = :1
		ORDER BY a.id`

	rows, err := q.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract accessories: %w", err)
	}
	defer rows.Close()

	var accessories []models.ContractAccessory
	for rows.Next() {
		var a models.ContractAccessory
		var unitPrice float64
		if err := rows.Scan(&a.ID, &a.ContractID, &a.Name, &unitPrice, &a.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan accessory: %w", err)
		}
		a.UnitPrice = decimal.NewFromFloat(unitPrice).Round(2)
		accessories = append(accessories, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accessories: %w", err)
	}
	return accessories, nil
}

// NextContractNumber allocates the next contract number for the year:
// CNT<YYYY><NNNN>, zero-padded, monotonic within the year. Must run inside
// the caller's transaction; the unique constraint on contract_number is
// the correctness backstop under concurrent allocation.
func (r *ContractRepository) NextContractNumber(ctx context.Context, q Querier, year int) (string, error) {
	prefix := fmt.Sprintf("CNT%d", year)
	query := `
		SELECT NVL(MAX(TO_NUMBER(SUBSTR(contract_number, 8))), 0)
		FROM contracts
		WHERE contract_number LIKE :1`

	var maxSeq int
	if err := q.QueryRowContext(ctx, query, prefix+"%").Scan(&maxSeq); err != nil {
		return "", fmt.Errorf("failed to allocate contract number: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, maxSeq+1), nil
}

// Insert inserts a contract and its accessories through q. The contract's
// derived fields must already be computed.
func (r *ContractRepository) Insert(ctx context.Context, q Querier, c *models.Contract) error {
	query := `
		INSERT INTO contracts (
			contract_number, client_id, vehicle_id, admin_id,
			start_date, end_date, total_days, service_type, daily_rate,
			accessories_total, subtotal, discount_amount, total_amount,
			paid_amount, payment_status, status,
			notes, pickup_location, dropoff_location, created_at, updated_at
		) VALUES (
			:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13,
			:14, :15, :16, :17, :18, :19, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		) RETURNING id INTO :20`

	var id int64
	_, err := q.ExecContext(ctx, query,
		c.ContractNumber, c.ClientID, c.VehicleID, c.AdminID,
		c.StartDate, c.EndDate, c.TotalDays, string(c.ServiceType), c.DailyRate.InexactFloat64(),
		c.AccessoriesTotal.InexactFloat64(), c.Subtotal.InexactFloat64(),
		c.DiscountAmount.InexactFloat64(), c.TotalAmount.InexactFloat64(),
		c.PaidAmount.InexactFloat64(), string(c.PaymentStatus), string(c.Status),
		NullableString(c.Notes), NullableString(c.PickupLocation), NullableString(c.DropoffLocation),
		sql.Out{Dest: &id},
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", classifyOracleError(err))
	}
	c.ID = id

	for i := range c.Accessories {
		c.Accessories[i].ContractID = id
		if err := r.insertAccessory(ctx, q, &c.Accessories[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ContractRepository) insertAccessory(ctx context.Context, q Querier, a *models.ContractAccessory) error {
	query := `
		INSERT INTO contract_accessories (contract_id, name, unit_price, quantity)
		VALUES (:1, :2, :3, :4) RETURNING id INTO :5`

	var id int64
	_, err := q.ExecContext(ctx, query,
		a.ContractID, a.Name, a.UnitPrice.InexactFloat64(), a.Quantity,
		sql.Out{Dest: &id},
	)
	if err != nil {
		return fmt.Errorf("failed to insert accessory: %w", classifyOracleError(err))
	}
	a.ID = id
	return nil
}

// Update rewrites the mutable and derived fields of a contract through q
func (r *ContractRepository) Update(ctx context.Context, q Querier, c *models.Contract) error {
	query := `
		UPDATE contracts SET
			start_date = :1, end_date = :2, total_days = :3,
			service_type = :4, daily_rate = :5,
			accessories_total = :6, subtotal = :7, discount_amount = :8, total_amount = :9,
			paid_amount = :10, payment_status = :11,
			notes = :12, pickup_location = :13, dropoff_location = :14,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = :15`

	result, err := q.ExecContext(ctx, query,
		c.StartDate, c.EndDate, c.TotalDays,
		string(c.ServiceType), c.DailyRate.InexactFloat64(),
		c.AccessoriesTotal.InexactFloat64(), c.Subtotal.InexactFloat64(),
		c.DiscountAmount.InexactFloat64(), c.TotalAmount.InexactFloat64(),
		c.PaidAmount.InexactFloat64(), string(c.PaymentStatus),
		NullableString(c.Notes), NullableString(c.PickupLocation), NullableString(c.DropoffLocation),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", classifyOracleError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf(errFmtRowsAffected, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAccessories deletes the prior accessory set and inserts the new
// one inside the caller's transaction. Accessories are exclusively owned
// by their contract.
func (r *ContractRepository) ReplaceAccessories(ctx context.Context, q Querier, contractID int64, accessories []models.ContractAccessory) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM contract_accessories WHERE contract_id = :1`, contractID); err != nil {
		return fmt.Errorf("failed to delete accessories: %w", classifyOracleError(err))
	}
	for i := range accessories {
		accessories[i].ContractID = contractID
		if err := r.insertAccessory(ctx, q, &accessories[i]); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatusGuarded transitions id from expected to target in one guarded
// statement. Returns false when the row was not in the expected status,
// which makes concurrent transitions and the background advancer safe.
func (r *ContractRepository) UpdateStatusGuarded(ctx context.Context, q Querier, id int64, expected, target models.ContractStatus) (bool, error) {
	if q == nil {
		q = r.db
	}
	query := `
		UPDATE contracts SET status = :1, updated_at = CURRENT_TIMESTAMP
		WHERE id = :2 AND status = :3`

	result, err := q.ExecContext(ctx, query, string(target), id, string(expected))
	if err != nil {
		return false, fmt.Errorf("failed to update contract status: %w", classifyOracleError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf(errFmtRowsAffected, err)
	}
	return rowsAffected > 0, nil
}

// UpdateStatusMany transitions every listed contract whose current status
// is still one of expected. A contract changed since the caller validated
// it is left alone, so the returned count exposes the race.
func (r *ContractRepository) UpdateStatusMany(ctx context.Context, q Querier, ids []int64, expected []models.ContractStatus, target models.ContractStatus) (int64, error) {
	if q == nil {
		q = r.db
	}
	var total int64
	for _, chunk := range ChunkSlice(ids, MaxInClauseSize) {
		in := NewInClauseBuilder(2)
		for _, id := range chunk {
			in.Add(id)
		}
		statusIn := NewInClauseBuilder(in.NextIndex())
		for _, st := range expected {
			statusIn.Add(string(st))
		}
		query := fmt.Sprintf(`
			UPDATE contracts SET status = :1, updated_at = CURRENT_TIMESTAMP
			WHERE id IN (%s) AND status IN (%s)`, in.Placeholders(), statusIn.Placeholders())

		args := append([]any{string(target)}, in.Args()...)
		args = append(args, statusIn.Args()...)
		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("failed to bulk update contract status: %w", classifyOracleError(err))
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf(errFmtRowsAffected, err)
		}
		total += rowsAffected
	}
	return total, nil
}

// UpdatePayment records a paid amount and its derived payment status
func (r *ContractRepository) UpdatePayment(ctx context.Context, id int64, paid decimal.Decimal, status models.PaymentStatus) error {
	query := `
		UPDATE contracts SET paid_amount = :1, payment_status = :2, updated_at = CURRENT_TIMESTAMP
		WHERE id = :3`

	result, err := r.db.ExecContext(ctx, query, paid.InexactFloat64(), string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", classifyOracleError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf(errFmtRowsAffected, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// contractListAllowedSorts defines valid sort columns for contract listing
var contractListAllowedSorts = map[string]bool{
	"contract_number": true,
	"start_date":      true,
	"end_date":        true,
	"status":          true,
	"total_amount":    true,
	"created_at":      true,
}

// List retrieves contracts with filters and pagination
func (r *ContractRepository) List(ctx context.Context, filter models.ContractFilter, params models.PaginationParams, search models.SearchParams) ([]models.Contract, int, error) {
	qb := NewQueryBuilder(1)
	if filter.Status != nil {
		qb.AddCondition("c.status = :%d", string(*filter.Status))
	}
	if filter.ClientID != nil {
		qb.AddCondition("c.client_id = :%d", *filter.ClientID)
	}
	if filter.VehicleID != nil {
		qb.AddCondition("c.vehicle_id = :%d", *filter.VehicleID)
	}
	if filter.ServiceType != nil {
		qb.AddCondition("c.service_type = :%d", string(*filter.ServiceType))
	}
	if filter.StartAfter != nil {
		qb.AddCondition("c.start_date >= :%d", *filter.StartAfter)
	}
	if filter.EndBefore != nil {
		qb.AddCondition("c.end_date <= :%d", *filter.EndBefore)
	}
	if search.Query != "" {
		qb.AddCondition("UPPER(c.contract_number) LIKE UPPER(:%d)", "%"+search.Query+"%")
	}

	countQuery := `SELECT COUNT(*) FROM contracts c WHERE 1 = 1` + qb.WhereClause()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, qb.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	sortBy, sortDir := getSortClause(search.SortBy, search.SortDir, contractListAllowedSorts, "created_at")
	query := fmt.Sprintf(`
		SELECT %s
		FROM contracts c
		WHERE 1 = 1%s
		ORDER BY c.%s %s
		OFFSET :%d ROWS FETCH NEXT :%d ROWS ONLY`,
		contractColumns, qb.WhereClause(), sortBy, sortDir,
		qb.NextIndex(), qb.NextIndex()+1)

	args := append(qb.Args(), params.Offset(), params.Limit())
	return r.queryContracts(ctx, query, total, args...)
}

// TodayActive returns contracts covering today in a blocking status.
// The status set is bound from the booking package, which is the only
// encoding of what blocks.
func (r *ContractRepository) TodayActive(ctx context.Context, today time.Time) ([]models.Contract, error) {
	statuses := NewInClauseBuilder(1)
	for _, s := range booking.ContractBlockingStatuses {
		statuses.Add(string(s))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM contracts c
		WHERE c.status IN (%s)
			AND c.start_date <= :%d AND c.end_date >= :%d
		ORDER BY c.start_date`,
		contractColumns, statuses.Placeholders(), statuses.NextIndex(), statuses.NextIndex()+1)

	args := append(statuses.Args(), today, today)
	contracts, _, err := r.queryContracts(ctx, query, 0, args...)
	return contracts, err
}

// EndingSoon returns active contracts ending within the given number of days
func (r *ContractRepository) EndingSoon(ctx context.Context, today time.Time, days int) ([]models.Contract, error) {
	horizon := today.AddDate(0, 0, days)
	query := `
		SELECT ` + contractColumns + `
		FROM contracts c
		WHERE c.status = 'ACTIVE'
			AND c.end_date >= :1 AND c.end_date <= :2
		ORDER BY c.end_date`

	contracts, _, err := r.queryContracts(ctx, query, 0, today, horizon)
	return contracts, err
}

// ListOverlappingForCalendar returns every contract, regardless of status,
// overlapping [monthStart,monthEnd] on the vehicle, with the client name
// for display. End dates are inclusive.
func (r *ContractRepository) ListOverlappingForCalendar(ctx context.Context, vehicleID int64, monthStart, monthEnd time.Time) ([]models.CalendarEntry, error) {
	query := `
		SELECT c.id, c.contract_number, c.status, c.start_date, c.end_date,
			TRIM(cl.prenom || ' ' || cl.nom)
		FROM contracts c
		JOIN clients cl ON cl.id = c.client_id
		WHERE c.vehicle_id = :1
			AND c.start_date <= :2 AND c.end_date >= :3
		ORDER BY c.start_date`

	rows, err := r.db.QueryContext(ctx, query, vehicleID, monthEnd, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar contracts: %w", err)
	}
	defer rows.Close()

	var entries []models.CalendarEntry
	for rows.Next() {
		var e models.CalendarEntry
		var clientName sql.NullString
		if err := rows.Scan(&e.ContractID, &e.ContractNumber, &e.Status, &e.StartDate, &e.EndDate, &clientName); err != nil {
			return nil, fmt.Errorf("failed to scan calendar contract: %w", err)
		}
		e.ClientName = StringFromNull(clientName)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar contracts: %w", err)
	}
	return entries, nil
}

func (r *ContractRepository) queryContracts(ctx context.Context, query string, total int, args ...any) ([]models.Contract, int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var dest contractScanDest
		if err := rows.Scan(dest.scanArgs()...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, dest.toContract())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate contracts: %w", err)
	}
	return contracts, total, nil
}

// AdvanceConfirmedDue moves CONFIRMED contracts whose start date has
// arrived to ACTIVE, at most batch rows per call. Idempotent: the status
// guard makes re-runs and concurrent runs no-ops.
func (r *ContractRepository) AdvanceConfirmedDue(ctx context.Context, today time.Time, batch int) (int64, error) {
	query := `
		UPDATE contracts SET status = 'ACTIVE', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'CONFIRMED' AND start_date <= :1 AND ROWNUM <= :2`

	result, err := r.db.ExecContext(ctx, query, today, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to advance confirmed contracts: %w", classifyOracleError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf(errFmtRowsAffected, err)
	}
	return rowsAffected, nil
}

// AdvanceActiveElapsed moves ACTIVE contracts whose end date has passed to
// COMPLETED, at most batch rows per call.
func (r *ContractRepository) AdvanceActiveElapsed(ctx context.Context, today time.Time, batch int) (int64, error) {
	query := `
		UPDATE contracts SET status = 'COMPLETED', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'ACTIVE' AND end_date < :1 AND ROWNUM <= :2`

	result, err := r.db.ExecContext(ctx, query, today, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to advance active contracts: %w", classifyOracleError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf(errFmtRowsAffected, err)
	}
	return rowsAffected, nil
}

// GetStats aggregates contract counts and revenue. Revenue excludes
// CANCELLED contracts; the status breakdown counts every status.
func (r *ContractRepository) GetStats(ctx context.Context) (*models.ContractStats, error) {
	stats := &models.ContractStats{
		TotalRevenue:       decimal.Zero,
		PaidRevenue:        decimal.Zero,
		StatusBreakdown:    make(map[models.ContractStatus]int),
		ServiceTypeRevenue: make(map[models.ServiceType]decimal.Decimal),
	}

	statusQuery := `SELECT status, COUNT(*) FROM contracts GROUP BY status`
	rows, err := r.db.QueryContext(ctx, statusQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query status breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status models.ContractStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.StatusBreakdown[status] = count
		stats.TotalContracts += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	revenueQuery := `
		SELECT service_type, NVL(SUM(total_amount), 0), NVL(SUM(paid_amount), 0)
		FROM contracts
		WHERE status != 'CANCELLED'
		GROUP BY service_type`
	revRows, err := r.db.QueryContext(ctx, revenueQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue: %w", err)
	}
	defer revRows.Close()
	for revRows.Next() {
		var serviceType models.ServiceType
		var revenue, paid float64
		if err := revRows.Scan(&serviceType, &revenue, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		rev := decimal.NewFromFloat(revenue).Round(2)
		stats.ServiceTypeRevenue[serviceType] = rev
		stats.TotalRevenue = stats.TotalRevenue.Add(rev)
		stats.PaidRevenue = stats.PaidRevenue.Add(decimal.NewFromFloat(paid).Round(2))
	}
	if err := revRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue: %w", err)
	}

	return stats, nil
}

// GetPeriodTotals aggregates contracts created in (windowStart, windowEnd].
// Revenue excludes CANCELLED contracts; the contract count does not.
func (r *ContractRepository) GetPeriodTotals(ctx context.Context, windowStart, windowEnd time.Time) (models.PeriodTotals, error) {
	query := `
		SELECT COUNT(*),
			NVL(SUM(CASE WHEN status != 'CANCELLED' THEN total_amount ELSE 0 END), 0),
			NVL(SUM(CASE WHEN status != 'CANCELLED' THEN paid_amount ELSE 0 END), 0)
		FROM contracts
		WHERE created_at > :1 AND created_at <= :2`

	var totals models.PeriodTotals
	var revenue, paid float64
	err := r.db.QueryRowContext(ctx, query, windowStart, windowEnd).Scan(&totals.Contracts, &revenue, &paid)
	if err != nil {
		return models.PeriodTotals{}, fmt.Errorf("failed to query period totals: %w", err)
	}
	totals.Revenue = decimal.NewFromFloat(revenue).Round(2)
	totals.PaidRevenue = decimal.NewFromFloat(paid).Round(2)
	return totals, nil
}
