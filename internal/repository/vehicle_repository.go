package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

// VehicleRepository is the read side of the vehicle catalog. Catalog CRUD
// lives in another service; the booking core only needs lookups.
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	if db == nil {
		panic("VehicleRepository: db is nil")
	}
	return &VehicleRepository{db: db}
}

const vehicleColumns = `v.id, v.make, v.model, v.year, v.license_plate, v.vin,
		v.price_per_day, v.currency, v.availability, v.is_active,
		v.created_at, v.updated_at`

// GetByID retrieves a vehicle by ID with its supported service types
func (r *VehicleRepository) GetByID(ctx context.Context, q Querier, id int64) (*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles v
		WHERE v.id = :1`

	vehicle, err := r.scanVehicle(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	types, err := r.serviceTypes(ctx, q, id)
	if err != nil {
		return nil, err
	}
	vehicle.ServiceTypes = types
	return vehicle, nil
}

// GetBookable retrieves a vehicle only when it is active and
// operator-available; returns ErrNotFound otherwise.
func (r *VehicleRepository) GetBookable(ctx context.Context, q Querier, id int64) (*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles v
		WHERE v.id = :1 AND v.is_active = 1 AND v.availability = 1`

	vehicle, err := r.scanVehicle(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	types, err := r.serviceTypes(ctx, q, id)
	if err != nil {
		return nil, err
	}
	vehicle.ServiceTypes = types
	return vehicle, nil
}

func (r *VehicleRepository) scanVehicle(row *sql.Row) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	var vin sql.NullString
	var pricePerDay float64
	var availability, isActive int
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&vehicle.ID, &vehicle.Make, &vehicle.Model, &vehicle.Year,
		&vehicle.LicensePlate, &vin,
		&pricePerDay, &vehicle.Currency, &availability, &isActive,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	vehicle.VIN = StringPtrFromNull(vin)
	vehicle.PricePerDay = decimal.NewFromFloat(pricePerDay).Round(2)
	vehicle.Availability = IntToBool(availability)
	vehicle.IsActive = IntToBool(isActive)
	vehicle.CreatedAt = TimeValueFromNull(createdAt)
	vehicle.UpdatedAt = TimeValueFromNull(updatedAt)
	return &vehicle, nil
}

func (r *VehicleRepository) serviceTypes(ctx context.Context, q Querier, vehicleID int64) ([]models.ServiceType, error) {
	query := `
		SELECT service_type
		FROM vehicle_service_types
		WHERE vehicle_id = :1
		ORDER BY service_type`

	rows, err := q.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle service types: %w", err)
	}
	defer rows.Close()

	var types []models.ServiceType
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, fmt.Errorf("failed to scan service type: %w", err)
		}
		types = append(types, models.ServiceType(st))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating service types: %w", err)
	}
	return types, nil
}

// DB exposes the pool for callers that run outside a transaction
func (r *VehicleRepository) DB() Querier { return r.db }
