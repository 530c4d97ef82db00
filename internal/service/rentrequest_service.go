package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/repository"
	"github.com/mohamedfrix/k2a-backend-sub000/pkg/fp"
)

const (
	// expiryNote is recorded on auto-rejected requests
	expiryNote = "Demande expirée automatiquement"
	// systemActor is the reviewer recorded for automated changes
	systemActor = "System"
)

// RentRequestStore is the rent-request persistence surface used by the service
type RentRequestStore interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	DB() repository.Querier
	Insert(ctx context.Context, q repository.Querier, rr *models.RentRequest) error
	GetByRequestID(ctx context.Context, q repository.Querier, requestID string) (*models.RentRequest, error)
	List(ctx context.Context, filter models.RentRequestFilter, params models.PaginationParams, search models.SearchParams) ([]models.RentRequest, int, error)
	UpdateStatusGuarded(ctx context.Context, q repository.Querier, requestID string, expected, target models.RentRequestStatus, adminNotes, reviewedBy string, reviewedAt time.Time) (bool, error)
	HasRecentDuplicate(ctx context.Context, email string, vehicleID int64, start, end, since time.Time) (bool, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	ExpireMany(ctx context.Context, q repository.Querier, requestIDs []string, note, reviewedBy string, reviewedAt time.Time) (int64, error)
	AppendHistory(ctx context.Context, q repository.Querier, h *models.RentRequestStatusHistory) error
	HistoryFor(ctx context.Context, requestID string) ([]models.RentRequestStatusHistory, error)
	Delete(ctx context.Context, requestID string) error
}

// RentRequestPolicy holds the intake rules
type RentRequestPolicy struct {
	MinLeadTime   time.Duration
	MaxRentalDays int
	DedupeWindow  time.Duration
	ExpiryAge     time.Duration
	BatchSize     int
}

// RentRequestService owns the public intake pipeline and the admin review
// workflow for rent requests.
type RentRequestService struct {
	requests RentRequestStore
	vehicles VehicleStore
	detector *booking.Detector
	notifier Notifier
	clock    booking.Clock
	policy   RentRequestPolicy
	logger   *slog.Logger
}

// NewRentRequestService creates a RentRequestService
func NewRentRequestService(
	requests RentRequestStore,
	vehicles VehicleStore,
	detector *booking.Detector,
	notifier Notifier,
	clock booking.Clock,
	policy RentRequestPolicy,
	logger *slog.Logger,
) *RentRequestService {
	return &RentRequestService{
		requests: requests,
		vehicles: vehicles,
		detector: detector,
		notifier: notifier,
		clock:    clock,
		policy:   policy,
		logger:   logger.With("component", "rent_request_service"),
	}
}

// Create handles the public intake of a rent request: validates the
// payload and the lead-time and duration rules, suppresses duplicates,
// rejects intervals already taken by a blocking booking, snapshots the
// vehicle and notifies client and staff asynchronously. A new request is
// always PENDING and does not itself bind availability.
func (s *RentRequestService) Create(ctx context.Context, req models.CreateRentRequestRequest) (*models.RentRequest, error) {
	if err := validateCreateRentRequest(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	start := models.DateOnly(req.StartDate)
	end := models.DateOnly(req.EndDate)

	if !end.After(start) {
		return nil, E(KindBadRequest, "end_date must be after start_date")
	}
	if start.Before(models.DateOnly(now.Add(s.policy.MinLeadTime))) {
		return nil, Ef(KindBadRequest, "start_date must be at least %s in the future", s.policy.MinLeadTime)
	}
	if days := models.RentalDays(start, end); days > s.policy.MaxRentalDays {
		return nil, Ef(KindBadRequest, "rental duration exceeds %d days", s.policy.MaxRentalDays)
	}

	vehicle, err := lookupBookable(ctx, s.vehicles, req.VehicleID)
	if err != nil {
		return nil, err
	}

	duplicate, err := s.requests.HasRecentDuplicate(ctx, req.ClientEmail, req.VehicleID, start, end, now.Add(-s.policy.DedupeWindow))
	if err != nil {
		return nil, internal("duplicate check", err)
	}
	if duplicate {
		return nil, E(KindDuplicate, "an identical request was submitted recently")
	}

	availability, err := s.detector.IsAvailable(ctx, nil, vehicle.ID, start, end, booking.CheckOptions{})
	if err != nil {
		return nil, internal("availability check", err)
	}
	if !availability.Available {
		return nil, ConflictError("vehicle is not available for the requested dates", availability.Conflicts)
	}

	request := &models.RentRequest{
		RequestID:          newRequestID(now),
		ClientName:         strings.TrimSpace(req.ClientName),
		ClientEmail:        strings.TrimSpace(req.ClientEmail),
		ClientPhone:        strings.TrimSpace(req.ClientPhone),
		VehicleID:          vehicle.ID,
		VehicleMake:        vehicle.Make,
		VehicleModel:       vehicle.Model,
		VehicleYear:        vehicle.Year,
		VehiclePricePerDay: vehicle.PricePerDay,
		VehicleCurrency:    vehicle.Currency,
		StartDate:          start,
		EndDate:            end,
		Message:            req.Message,
		Status:             models.RentRequestStatusPending,
		CreatedAt:          now,
	}

	if err := s.requests.Insert(ctx, nil, request); err != nil {
		return nil, internal("insert rent request", err)
	}

	s.logger.InfoContext(ctx, "rent request created",
		"request_id", request.RequestID,
		"vehicle_id", request.VehicleID,
		"start_date", start,
		"end_date", end,
	)

	// Notifications must not delay or fail the intake.
	notifyCtx := context.WithoutCancel(ctx)
	go s.notifier.SendClientConfirmation(notifyCtx, request)
	go s.notifier.SendAdminNotification(notifyCtx, request)

	return request, nil
}

// newRequestID builds the public identifier REQ_<unix-millis>_<suffix>
func newRequestID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("REQ_%d_%s", now.UnixMilli(), suffix)
}

// GetByRequestID returns a rent request by its public identifier
func (s *RentRequestService) GetByRequestID(ctx context.Context, requestID string) (*models.RentRequest, error) {
	request, err := s.requests.GetByRequestID(ctx, nil, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("rent request")
		}
		return nil, internal("load rent request", err)
	}
	return request, nil
}

// List returns rent requests matching the filter, with the total count
func (s *RentRequestService) List(ctx context.Context, filter models.RentRequestFilter, params models.PaginationParams, search models.SearchParams) ([]models.RentRequest, int, error) {
	requests, total, err := s.requests.List(ctx, filter, params, search)
	if err != nil {
		return nil, 0, internal("list rent requests", err)
	}
	return requests, total, nil
}

// UpdateStatus applies an admin transition to a rent request. Moving to a
// blocking status (APPROVED or CONFIRMED) re-checks availability in the
// same transaction as the write: approval is the moment a request starts
// binding the vehicle. Every change is recorded in the audit trail.
func (s *RentRequestService) UpdateStatus(ctx context.Context, requestID string, req models.UpdateRentRequestStatusRequest, changedBy string) (*models.RentRequest, error) {
	if !models.ValidRentRequestStatuses[req.Status] {
		return nil, Ef(KindBadRequest, "unknown rent request status %q", req.Status)
	}
	if changedBy == "" {
		changedBy = systemActor
	}

	request, err := s.requests.GetByRequestID(ctx, nil, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("rent request")
		}
		return nil, internal("load rent request", err)
	}
	if !request.Status.CanTransitionTo(req.Status) {
		return nil, Ef(KindInvalidTransition, "cannot transition rent request from %s to %s", request.Status, req.Status)
	}

	now := s.clock.Now()
	oldStatus := request.Status

	apply := func(tx *sql.Tx) error {
		var q repository.Querier
		if tx != nil {
			q = tx
		}
		if req.Status.Blocks() {
			availability, err := s.detector.IsAvailable(ctx, q, request.VehicleID, request.StartDate, request.EndDate, booking.CheckOptions{
				ExcludeRequestID: request.RequestID,
			})
			if err != nil {
				return internal("availability check", err)
			}
			if !availability.Available {
				return ConflictError("vehicle is not available for the requested dates", availability.Conflicts)
			}
		}

		ok, err := s.requests.UpdateStatusGuarded(ctx, q, requestID, oldStatus, req.Status, req.AdminNotes, changedBy, now)
		if err != nil {
			return internal("update rent request status", err)
		}
		if !ok {
			return Ef(KindPreconditionFailed, "rent request %s was modified concurrently", requestID)
		}

		return s.requests.AppendHistory(ctx, q, &models.RentRequestStatusHistory{
			RequestID: requestID,
			OldStatus: oldStatus,
			NewStatus: req.Status,
			ChangedBy: changedBy,
			Notes:     req.AdminNotes,
			ChangedAt: now,
		})
	}

	if req.Status.Blocks() {
		err = s.retrySerializable(ctx, func() error {
			return s.requests.WithTx(ctx, apply)
		})
	} else {
		err = apply(nil)
	}
	if err != nil {
		return nil, asServiceError("update rent request status", err)
	}

	request.Status = req.Status
	request.AdminNotes = req.AdminNotes
	request.ReviewedBy = changedBy
	request.ReviewedAt = &now

	s.logger.InfoContext(ctx, "rent request transitioned",
		"request_id", requestID,
		"old_status", oldStatus,
		"new_status", req.Status,
		"changed_by", changedBy,
	)

	notifyCtx := context.WithoutCancel(ctx)
	go s.notifier.SendStatusUpdate(notifyCtx, request, oldStatus)

	return request, nil
}

// History returns the audit trail for a rent request, oldest first
func (s *RentRequestService) History(ctx context.Context, requestID string) ([]models.RentRequestStatusHistory, error) {
	if _, err := s.GetByRequestID(ctx, requestID); err != nil {
		return nil, err
	}
	history, err := s.requests.HistoryFor(ctx, requestID)
	if err != nil {
		return nil, internal("load status history", err)
	}
	return history, nil
}

// Approvability reports, for each listed request, whether approving it
// would succeed right now and which bookings stand in the way.
func (s *RentRequestService) Approvability(ctx context.Context, requests []models.RentRequest) (map[string]booking.Approvability, error) {
	result, err := s.detector.ApprovabilityOf(ctx, requests)
	if err != nil {
		return nil, internal("approvability check", err)
	}
	return result, nil
}

// ExpirePending auto-rejects PENDING requests older than the configured
// age. The sweep is batch-bounded and idempotent; each expired request
// gets an audit row attributed to the system actor.
func (s *RentRequestService) ExpirePending(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	cutoff := now.Add(-s.policy.ExpiryAge)

	ids, err := s.requests.ListPendingCreatedBefore(ctx, cutoff, s.policy.BatchSize)
	if err != nil {
		return 0, internal("list expirable requests", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var expired int64
	err = s.requests.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := s.requests.ExpireMany(ctx, tx, ids, expiryNote, systemActor, now)
		if err != nil {
			return internal("expire requests", err)
		}
		expired = n
		for _, id := range ids {
			if err := s.requests.AppendHistory(ctx, tx, &models.RentRequestStatusHistory{
				RequestID: id,
				OldStatus: models.RentRequestStatusPending,
				NewStatus: models.RentRequestStatusRejected,
				ChangedBy: systemActor,
				Notes:     expiryNote,
				ChangedAt: now,
			}); err != nil {
				return internal("append expiry history", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, asServiceError("expire pending requests", err)
	}

	if expired > 0 {
		s.logger.InfoContext(ctx, "pending rent requests expired", "count", expired)
	}
	return expired, nil
}

// Delete removes a rent request in a terminal status together with its
// audit trail.
func (s *RentRequestService) Delete(ctx context.Context, requestID string) error {
	request, err := s.GetByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	if !request.Status.IsTerminal() {
		return Ef(KindPreconditionFailed, "rent request in status %s cannot be deleted", request.Status)
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("rent request")
		}
		return internal("delete rent request", err)
	}
	s.logger.InfoContext(ctx, "rent request deleted", "request_id", requestID)
	return nil
}

// retrySerializable re-runs fn when a serializable transaction aborts
func (s *RentRequestService) retrySerializable(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= maxSerializationRetries {
			return err
		}
		if !repository.IsSerialization(err) {
			return err
		}
		s.logger.WarnContext(ctx, "retrying after serialization abort", "attempt", attempt+1)
	}
}

func validateCreateRentRequest(req models.CreateRentRequestRequest) error {
	result := fp.Validate(req,
		func(r models.CreateRentRequestRequest) error {
			return fp.Required("client_name")(r.ClientName)
		},
		func(r models.CreateRentRequestRequest) error {
			if err := fp.Required("client_email")(r.ClientEmail); err != nil {
				return err
			}
			return fp.Email("client_email")(r.ClientEmail)
		},
		func(r models.CreateRentRequestRequest) error {
			return fp.Required("client_phone")(r.ClientPhone)
		},
		func(r models.CreateRentRequestRequest) error {
			return fp.Positive[int64]("vehicle_id")(r.VehicleID)
		},
		func(r models.CreateRentRequestRequest) error {
			if r.StartDate.IsZero() || r.EndDate.IsZero() {
				return fp.ValidationError{Field: "dates", Message: "start_date and end_date are required"}
			}
			return nil
		},
	)
	if fp.IsFailure(result) {
		return Wrap(KindBadRequest, "invalid rent request", fp.GetError(result))
	}
	return nil
}
