package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/repository"
	"github.com/mohamedfrix/k2a-backend-sub000/pkg/fp"
)

// maxSerializationRetries bounds retries of serializable transactions
// aborted by ORA-08177 or by the contract-number unique key.
const maxSerializationRetries = 2

// ContractStore is the contract persistence surface used by the service
type ContractStore interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	DB() repository.Querier
	GetByID(ctx context.Context, q repository.Querier, id int64) (*models.Contract, error)
	NextContractNumber(ctx context.Context, q repository.Querier, year int) (string, error)
	Insert(ctx context.Context, q repository.Querier, c *models.Contract) error
	Update(ctx context.Context, q repository.Querier, c *models.Contract) error
	ReplaceAccessories(ctx context.Context, q repository.Querier, contractID int64, accessories []models.ContractAccessory) error
	UpdateStatusGuarded(ctx context.Context, q repository.Querier, id int64, expected, target models.ContractStatus) (bool, error)
	UpdateStatusMany(ctx context.Context, q repository.Querier, ids []int64, expected []models.ContractStatus, target models.ContractStatus) (int64, error)
	UpdatePayment(ctx context.Context, id int64, paid decimal.Decimal, status models.PaymentStatus) error
	List(ctx context.Context, filter models.ContractFilter, params models.PaginationParams, search models.SearchParams) ([]models.Contract, int, error)
	TodayActive(ctx context.Context, today time.Time) ([]models.Contract, error)
	EndingSoon(ctx context.Context, today time.Time, days int) ([]models.Contract, error)
	ListOverlappingForCalendar(ctx context.Context, vehicleID int64, monthStart, monthEnd time.Time) ([]models.CalendarEntry, error)
	AdvanceConfirmedDue(ctx context.Context, today time.Time, batch int) (int64, error)
	AdvanceActiveElapsed(ctx context.Context, today time.Time, batch int) (int64, error)
}

// ClientStore is the client lookup surface used by the service
type ClientStore interface {
	GetByID(ctx context.Context, q repository.Querier, id int64) (*models.Client, error)
	DB() repository.Querier
}

// VehicleStore is the vehicle lookup surface used by the service
type VehicleStore interface {
	GetByID(ctx context.Context, q repository.Querier, id int64) (*models.Vehicle, error)
	GetBookable(ctx context.Context, q repository.Querier, id int64) (*models.Vehicle, error)
	DB() repository.Querier
}

// ContractService owns the contract lifecycle: creation, status
// transitions, updates, payments and the calendar and report reads.
type ContractService struct {
	contracts ContractStore
	clients   ClientStore
	vehicles  VehicleStore
	detector  *booking.Detector
	clock     booking.Clock
	batchSize int
	logger    *slog.Logger
}

// NewContractService creates a ContractService
func NewContractService(
	contracts ContractStore,
	clients ClientStore,
	vehicles VehicleStore,
	detector *booking.Detector,
	clock booking.Clock,
	batchSize int,
	logger *slog.Logger,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		clients:   clients,
		vehicles:  vehicles,
		detector:  detector,
		clock:     clock,
		batchSize: batchSize,
		logger:    logger.With("component", "contract_service"),
	}
}

// Create validates a contract request, checks availability and inserts the
// contract atomically. The availability check and the insert run in one
// serializable transaction; aborts from concurrent bookings are retried.
func (s *ContractService) Create(ctx context.Context, req models.CreateContractRequest, adminID int64) (*models.Contract, error) {
	if err := validateCreateContract(req); err != nil {
		return nil, err
	}

	start := models.DateOnly(req.StartDate)
	end := models.DateOnly(req.EndDate)
	if !end.After(start) {
		return nil, E(KindBadRequest, "end_date must be after start_date")
	}
	if start.Before(models.DateOnly(s.clock.Now())) {
		return nil, E(KindBadRequest, "start_date must not be in the past")
	}

	client, err := s.clients.GetByID(ctx, s.clients.DB(), req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("client")
		}
		return nil, internal("load client", err)
	}
	if !client.IsActive || client.Status != models.ClientStatusActif {
		return nil, Ef(KindPreconditionFailed, "client %s is not eligible for a contract", client.FullName())
	}

	vehicle, err := lookupBookable(ctx, s.vehicles, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.SupportsServiceType(req.ServiceType) {
		return nil, Ef(KindPreconditionFailed, "vehicle %s does not support service type %s", vehicle.DisplayName(), req.ServiceType)
	}

	discount := decimal.Zero
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}

	contract := &models.Contract{
		ClientID:        req.ClientID,
		VehicleID:       req.VehicleID,
		AdminID:         adminID,
		StartDate:       start,
		EndDate:         end,
		ServiceType:     req.ServiceType,
		DailyRate:       req.DailyRate,
		DiscountAmount:  discount,
		PaidAmount:      decimal.Zero,
		Status:          models.ContractStatusPending,
		Notes:           req.Notes,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
	}
	for _, a := range req.Accessories {
		contract.Accessories = append(contract.Accessories, models.ContractAccessory{
			Name:      a.Name,
			UnitPrice: a.UnitPrice,
			Quantity:  a.Quantity,
		})
	}
	contract.ComputeDerived()
	if contract.TotalAmount.IsNegative() {
		return nil, E(KindBadRequest, "discount_amount exceeds the contract total")
	}

	err = s.retrySerializable(ctx, func() error {
		return s.contracts.WithTx(ctx, func(tx *sql.Tx) error {
			availability, err := s.detector.IsAvailable(ctx, tx, contract.VehicleID, start, end, booking.CheckOptions{})
			if err != nil {
				return internal("availability check", err)
			}
			if !availability.Available {
				return ConflictError("vehicle is not available for the requested dates", availability.Conflicts)
			}

			number, err := s.contracts.NextContractNumber(ctx, tx, s.clock.Now().Year())
			if err != nil {
				return internal("allocate contract number", err)
			}
			contract.ContractNumber = number

			return s.contracts.Insert(ctx, tx, contract)
		})
	})
	if err != nil {
		return nil, asServiceError("create contract", err)
	}

	contract.Client = client
	contract.Vehicle = vehicle
	s.logger.InfoContext(ctx, "contract created",
		"contract_number", contract.ContractNumber,
		"vehicle_id", contract.VehicleID,
		"client_id", contract.ClientID,
	)
	return contract, nil
}

// lookupBookable loads a vehicle that can take bookings. A vehicle that
// exists but is inactive or unavailable is a precondition failure, not a
// missing resource.
func lookupBookable(ctx context.Context, vehicles VehicleStore, vehicleID int64) (*models.Vehicle, error) {
	vehicle, err := vehicles.GetBookable(ctx, vehicles.DB(), vehicleID)
	if err == nil {
		return vehicle, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("load vehicle", err)
	}
	if _, lookErr := vehicles.GetByID(ctx, vehicles.DB(), vehicleID); errors.Is(lookErr, repository.ErrNotFound) {
		return nil, notFound("vehicle")
	}
	return nil, E(KindPreconditionFailed, "vehicle is not bookable")
}

// GetByID returns a contract with its client and vehicle attached
func (s *ContractService) GetByID(ctx context.Context, id int64) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, s.contracts.DB(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("contract")
		}
		return nil, internal("load contract", err)
	}
	s.attachRelations(ctx, contract)
	return contract, nil
}

func (s *ContractService) attachRelations(ctx context.Context, contract *models.Contract) {
	if client, err := s.clients.GetByID(ctx, s.clients.DB(), contract.ClientID); err == nil {
		contract.Client = client
	}
	if vehicle, err := s.vehicles.GetByID(ctx, s.vehicles.DB(), contract.VehicleID); err == nil {
		contract.Vehicle = vehicle
	}
}

// List returns contracts matching the filter, with the total count
func (s *ContractService) List(ctx context.Context, filter models.ContractFilter, params models.PaginationParams, search models.SearchParams) ([]models.Contract, int, error) {
	contracts, total, err := s.contracts.List(ctx, filter, params, search)
	if err != nil {
		return nil, 0, internal("list contracts", err)
	}
	return contracts, total, nil
}

// Transition moves a contract to target, enforcing the lifecycle graph.
// Confirmation re-checks availability inside the same transaction as the
// write: a PENDING contract never blocked the interval, so another booking
// may have taken it since creation.
func (s *ContractService) Transition(ctx context.Context, id int64, target models.ContractStatus) (*models.Contract, error) {
	if !models.ValidContractStatuses[target] {
		return nil, Ef(KindBadRequest, "unknown contract status %q", target)
	}

	contract, err := s.contracts.GetByID(ctx, s.contracts.DB(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("contract")
		}
		return nil, internal("load contract", err)
	}
	if !contract.Status.CanTransitionTo(target) {
		return nil, Ef(KindInvalidTransition, "cannot transition contract from %s to %s", contract.Status, target)
	}
	if target == models.ContractStatusActive && contract.StartDate.After(models.DateOnly(s.clock.Now())) {
		return nil, Ef(KindPreconditionFailed, "contract %s does not start until %s",
			contract.ContractNumber, contract.StartDate.Format("2006-01-02"))
	}

	if target == models.ContractStatusConfirmed {
		err = s.retrySerializable(ctx, func() error {
			return s.contracts.WithTx(ctx, func(tx *sql.Tx) error {
				availability, err := s.detector.IsAvailable(ctx, tx, contract.VehicleID, contract.StartDate, contract.EndDate, booking.CheckOptions{
					ExcludeContractID: contract.ID,
				})
				if err != nil {
					return internal("availability check", err)
				}
				if !availability.Available {
					return ConflictError("vehicle is no longer available for the contract dates", availability.Conflicts)
				}
				return s.guardedTransition(ctx, tx, contract, target)
			})
		})
	} else {
		err = s.guardedTransition(ctx, nil, contract, target)
	}
	if err != nil {
		return nil, asServiceError("transition contract", err)
	}

	contract.Status = target
	s.logger.InfoContext(ctx, "contract transitioned",
		"contract_number", contract.ContractNumber,
		"status", target,
	)
	return contract, nil
}

func (s *ContractService) guardedTransition(ctx context.Context, q repository.Querier, contract *models.Contract, target models.ContractStatus) error {
	ok, err := s.contracts.UpdateStatusGuarded(ctx, q, contract.ID, contract.Status, target)
	if err != nil {
		return internal("update contract status", err)
	}
	if !ok {
		return Ef(KindPreconditionFailed, "contract %s was modified concurrently", contract.ContractNumber)
	}
	return nil
}

// BulkTransition applies one target status to several contracts
// atomically: every contract is validated before any is written, and a
// bulk confirmation re-checks availability for each contract.
func (s *ContractService) BulkTransition(ctx context.Context, req models.BulkStatusRequest) (int64, error) {
	if len(req.ContractIDs) == 0 {
		return 0, E(KindBadRequest, "contract_ids must not be empty")
	}
	if !models.ValidContractStatuses[req.Status] {
		return 0, Ef(KindBadRequest, "unknown contract status %q", req.Status)
	}

	today := models.DateOnly(s.clock.Now())
	contracts := make([]*models.Contract, 0, len(req.ContractIDs))
	var fromStatuses []models.ContractStatus
	seen := make(map[models.ContractStatus]bool)
	for _, id := range req.ContractIDs {
		contract, err := s.contracts.GetByID(ctx, s.contracts.DB(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, Ef(KindNotFound, "contract %d not found", id)
			}
			return 0, internal("load contract", err)
		}
		if !contract.Status.CanTransitionTo(req.Status) {
			return 0, Ef(KindInvalidTransition, "cannot transition contract %s from %s to %s",
				contract.ContractNumber, contract.Status, req.Status)
		}
		if req.Status == models.ContractStatusActive && contract.StartDate.After(today) {
			return 0, Ef(KindPreconditionFailed, "contract %s does not start until %s",
				contract.ContractNumber, contract.StartDate.Format("2006-01-02"))
		}
		contracts = append(contracts, contract)
		if !seen[contract.Status] {
			seen[contract.Status] = true
			fromStatuses = append(fromStatuses, contract.Status)
		}
	}

	var affected int64
	err := s.retrySerializable(ctx, func() error {
		return s.contracts.WithTx(ctx, func(tx *sql.Tx) error {
			if req.Status == models.ContractStatusConfirmed {
				for _, contract := range contracts {
					availability, err := s.detector.IsAvailable(ctx, tx, contract.VehicleID, contract.StartDate, contract.EndDate, booking.CheckOptions{
						ExcludeContractID: contract.ID,
					})
					if err != nil {
						return internal("availability check", err)
					}
					if !availability.Available {
						return ConflictError("vehicle is no longer available for contract "+contract.ContractNumber, availability.Conflicts)
					}
				}
			}

			// The status predicate keeps the write honest: a contract
			// that changed since validation is not matched, and the
			// count check below surfaces the race.
			n, err := s.contracts.UpdateStatusMany(ctx, tx, req.ContractIDs, fromStatuses, req.Status)
			if err != nil {
				return internal("bulk update contract status", err)
			}
			if n != int64(len(req.ContractIDs)) {
				return E(KindPreconditionFailed, "one or more contracts were modified concurrently")
			}
			affected = n
			return nil
		})
	})
	if err != nil {
		return 0, asServiceError("bulk transition", err)
	}

	s.logger.InfoContext(ctx, "contracts bulk transitioned", "count", affected, "status", req.Status)
	return affected, nil
}

// Update applies a partial update to a PENDING or CONFIRMED contract.
// Date changes re-check availability (excluding the contract itself) in
// the same transaction as the write; derived fields are recomputed.
func (s *ContractService) Update(ctx context.Context, id int64, req models.UpdateContractRequest) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, s.contracts.DB(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("contract")
		}
		return nil, internal("load contract", err)
	}
	if contract.Status != models.ContractStatusPending && contract.Status != models.ContractStatusConfirmed {
		return nil, Ef(KindPreconditionFailed, "contract in status %s cannot be edited", contract.Status)
	}

	datesChanged := false
	if req.StartDate != nil {
		newStart := models.DateOnly(*req.StartDate)
		if newStart.Before(contract.StartDate) && newStart.Before(models.DateOnly(s.clock.Now())) {
			return nil, E(KindBadRequest, "start_date cannot be moved into the past")
		}
		contract.StartDate = newStart
		datesChanged = true
	}
	if req.EndDate != nil {
		contract.EndDate = models.DateOnly(*req.EndDate)
		datesChanged = true
	}
	if !contract.EndDate.After(contract.StartDate) {
		return nil, E(KindBadRequest, "end_date must be after start_date")
	}
	if req.ServiceType != nil {
		if !models.ValidServiceTypes[*req.ServiceType] {
			return nil, Ef(KindBadRequest, "unknown service type %q", *req.ServiceType)
		}
		vehicle, err := s.vehicles.GetByID(ctx, s.vehicles.DB(), contract.VehicleID)
		if err != nil {
			return nil, internal("load vehicle", err)
		}
		if !vehicle.SupportsServiceType(*req.ServiceType) {
			return nil, Ef(KindPreconditionFailed, "vehicle does not support service type %s", *req.ServiceType)
		}
		contract.ServiceType = *req.ServiceType
	}
	if req.DailyRate != nil {
		if req.DailyRate.LessThanOrEqual(decimal.Zero) {
			return nil, E(KindBadRequest, "daily_rate must be positive")
		}
		contract.DailyRate = *req.DailyRate
	}
	if req.DiscountAmount != nil {
		if req.DiscountAmount.IsNegative() {
			return nil, E(KindBadRequest, "discount_amount must be non-negative")
		}
		contract.DiscountAmount = *req.DiscountAmount
	}
	if req.Notes != nil {
		contract.Notes = *req.Notes
	}
	if req.PickupLocation != nil {
		contract.PickupLocation = *req.PickupLocation
	}
	if req.DropoffLocation != nil {
		contract.DropoffLocation = *req.DropoffLocation
	}

	replaceAccessories := false
	if req.Accessories != nil {
		replaceAccessories = true
		contract.Accessories = nil
		for _, a := range *req.Accessories {
			if a.Quantity < 1 {
				return nil, E(KindBadRequest, "accessory quantity must be at least 1")
			}
			contract.Accessories = append(contract.Accessories, models.ContractAccessory{
				ContractID: contract.ID,
				Name:       a.Name,
				UnitPrice:  a.UnitPrice,
				Quantity:   a.Quantity,
			})
		}
	}

	contract.ComputeDerived()
	if contract.TotalAmount.IsNegative() {
		return nil, E(KindBadRequest, "discount_amount exceeds the contract total")
	}
	if contract.TotalAmount.LessThan(contract.PaidAmount) {
		return nil, Ef(KindBadRequest, "new total %s is below the %s already paid",
			contract.TotalAmount, contract.PaidAmount)
	}

	err = s.retrySerializable(ctx, func() error {
		return s.contracts.WithTx(ctx, func(tx *sql.Tx) error {
			if datesChanged {
				availability, err := s.detector.IsAvailable(ctx, tx, contract.VehicleID, contract.StartDate, contract.EndDate, booking.CheckOptions{
					ExcludeContractID: contract.ID,
				})
				if err != nil {
					return internal("availability check", err)
				}
				if !availability.Available {
					return ConflictError("vehicle is not available for the new dates", availability.Conflicts)
				}
			}
			if err := s.contracts.Update(ctx, tx, contract); err != nil {
				return internal("update contract", err)
			}
			if replaceAccessories {
				if err := s.contracts.ReplaceAccessories(ctx, tx, contract.ID, contract.Accessories); err != nil {
					return internal("replace accessories", err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, asServiceError("update contract", err)
	}

	s.attachRelations(ctx, contract)
	return contract, nil
}

// RecordPayment records the cumulative paid amount on a contract and
// derives its payment status. CANCELLED contracts are frozen.
func (s *ContractService) RecordPayment(ctx context.Context, id int64, req models.UpdatePaymentRequest) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, s.contracts.DB(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("contract")
		}
		return nil, internal("load contract", err)
	}
	if contract.Status == models.ContractStatusCancelled {
		return nil, E(KindPreconditionFailed, "payments cannot be recorded on a cancelled contract")
	}
	if req.PaidAmount.IsNegative() {
		return nil, E(KindBadRequest, "paid_amount must be non-negative")
	}
	if req.PaidAmount.GreaterThan(contract.TotalAmount) {
		return nil, E(KindBadRequest, "paid_amount exceeds the contract total")
	}

	paid := req.PaidAmount.Round(2)
	status := models.DerivePaymentStatus(paid, contract.TotalAmount)
	if err := s.contracts.UpdatePayment(ctx, id, paid, status); err != nil {
		return nil, internal("update payment", err)
	}

	contract.PaidAmount = paid
	contract.PaymentStatus = status
	s.logger.InfoContext(ctx, "payment recorded",
		"contract_number", contract.ContractNumber,
		"paid_amount", paid,
		"payment_status", status,
	)
	return contract, nil
}

// CheckAvailability answers "is vehicle V free during [start,end]?" with
// the conflicts when it is not. A non-zero excludeContractID leaves that
// contract out of the check, so an edit can test its own new dates.
func (s *ContractService) CheckAvailability(ctx context.Context, vehicleID int64, start, end time.Time, excludeContractID int64) (booking.Availability, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)
	if end.Before(start) {
		return booking.Availability{}, E(KindBadRequest, "end_date must not be before start_date")
	}
	if _, err := s.vehicles.GetByID(ctx, s.vehicles.DB(), vehicleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return booking.Availability{}, notFound("vehicle")
		}
		return booking.Availability{}, internal("load vehicle", err)
	}

	availability, err := s.detector.IsAvailable(ctx, s.contracts.DB(), vehicleID, start, end, booking.CheckOptions{
		ExcludeContractID: excludeContractID,
	})
	if err != nil {
		return booking.Availability{}, internal("availability check", err)
	}
	return availability, nil
}

// Calendar builds the month view for a vehicle. Every overlapping contract
// is listed whatever its status; a day is available iff no contract at
// all covers it.
func (s *ContractService) Calendar(ctx context.Context, vehicleID int64, year int, month time.Month) (*models.VehicleCalendar, error) {
	if _, err := s.vehicles.GetByID(ctx, s.vehicles.DB(), vehicleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("vehicle")
		}
		return nil, internal("load vehicle", err)
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, -1)

	entries, err := s.contracts.ListOverlappingForCalendar(ctx, vehicleID, monthStart, monthEnd)
	if err != nil {
		return nil, internal("load calendar contracts", err)
	}

	calendar := &models.VehicleCalendar{
		VehicleID: vehicleID,
		Month:     month,
		Year:      year,
	}
	for day := monthStart; !day.After(monthEnd); day = day.AddDate(0, 0, 1) {
		cd := models.CalendarDay{Date: day, IsAvailable: true}
		for _, e := range entries {
			if booking.Overlaps(day, day, e.StartDate, e.EndDate) {
				cd.Contracts = append(cd.Contracts, e)
				cd.IsAvailable = false
			}
		}
		calendar.Days = append(calendar.Days, cd)
	}
	return calendar, nil
}

// TodayActive returns contracts covering today in a blocking status
func (s *ContractService) TodayActive(ctx context.Context) ([]models.Contract, error) {
	contracts, err := s.contracts.TodayActive(ctx, models.DateOnly(s.clock.Now()))
	if err != nil {
		return nil, internal("list today-active contracts", err)
	}
	return contracts, nil
}

// EndingSoon returns active contracts ending within days from today
func (s *ContractService) EndingSoon(ctx context.Context, days int) ([]models.Contract, error) {
	if days < 1 {
		return nil, E(KindBadRequest, "days must be at least 1")
	}
	contracts, err := s.contracts.EndingSoon(ctx, models.DateOnly(s.clock.Now()), days)
	if err != nil {
		return nil, internal("list ending-soon contracts", err)
	}
	return contracts, nil
}

// ProcessDueTransitions advances contracts whose dates have arrived:
// CONFIRMED contracts that have started become ACTIVE, ACTIVE contracts
// past their end date become COMPLETED. Both sweeps are idempotent.
func (s *ContractService) ProcessDueTransitions(ctx context.Context) (activated, completed int64, err error) {
	today := models.DateOnly(s.clock.Now())

	activated, err = s.contracts.AdvanceConfirmedDue(ctx, today, s.batchSize)
	if err != nil {
		return 0, 0, internal("advance confirmed contracts", err)
	}
	completed, err = s.contracts.AdvanceActiveElapsed(ctx, today, s.batchSize)
	if err != nil {
		return activated, 0, internal("advance active contracts", err)
	}

	if activated > 0 || completed > 0 {
		s.logger.InfoContext(ctx, "due transitions processed",
			"activated", activated,
			"completed", completed,
		)
	}
	return activated, completed, nil
}

// retrySerializable re-runs fn when it fails with a retryable concurrency
// error: a serialization abort or a duplicate contract number.
func (s *ContractService) retrySerializable(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= maxSerializationRetries {
			return err
		}
		if !repository.IsSerialization(err) && !repository.IsDuplicateKey(err) {
			return err
		}
		s.logger.WarnContext(ctx, "retrying after concurrency abort", "attempt", attempt+1)
	}
}

// asServiceError passes typed service errors through and wraps anything
// else as internal. Retryable errors that exhausted their attempts
// surface as conflicts: another booking won the race.
func asServiceError(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if repository.IsSerialization(err) || repository.IsDuplicateKey(err) {
		return E(KindConflict, "a concurrent booking modified the requested interval")
	}
	return internal(op, err)
}

func validateCreateContract(req models.CreateContractRequest) error {
	result := fp.Validate(req,
		func(r models.CreateContractRequest) error {
			return fp.Positive[int64]("client_id")(r.ClientID)
		},
		func(r models.CreateContractRequest) error {
			return fp.Positive[int64]("vehicle_id")(r.VehicleID)
		},
		func(r models.CreateContractRequest) error {
			if !models.ValidServiceTypes[r.ServiceType] {
				return fp.ValidationError{Field: "service_type", Message: "is not a valid value"}
			}
			return nil
		},
		func(r models.CreateContractRequest) error {
			if r.DailyRate.LessThanOrEqual(decimal.Zero) {
				return fp.ValidationError{Field: "daily_rate", Message: "must be positive"}
			}
			return nil
		},
		func(r models.CreateContractRequest) error {
			if r.DiscountAmount != nil && r.DiscountAmount.IsNegative() {
				return fp.ValidationError{Field: "discount_amount", Message: "must be non-negative"}
			}
			return nil
		},
		func(r models.CreateContractRequest) error {
			for _, a := range r.Accessories {
				if err := fp.Required("accessories.name")(a.Name); err != nil {
					return err
				}
				if a.Quantity < 1 {
					return fp.ValidationError{Field: "accessories.quantity", Message: "must be at least 1"}
				}
				if a.UnitPrice.IsNegative() {
					return fp.ValidationError{Field: "accessories.unit_price", Message: "must be non-negative"}
				}
			}
			return nil
		},
	)
	if fp.IsFailure(result) {
		return Wrap(KindBadRequest, "invalid contract request", fp.GetError(result))
	}
	return nil
}
