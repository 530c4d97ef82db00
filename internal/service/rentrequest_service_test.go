package service_test

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/repository"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/service"
)

// fakeRentRequestStore is an in-memory RentRequestStore
type fakeRentRequestStore struct {
	requests map[string]*models.RentRequest
	history  []models.RentRequestStatusHistory
	nextID   int64
}

func newFakeRentRequestStore(requests ...*models.RentRequest) *fakeRentRequestStore {
	s := &fakeRentRequestStore{requests: make(map[string]*models.RentRequest), nextID: 1}
	for _, r := range requests {
		cp := *r
		s.requests[r.RequestID] = &cp
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	return s
}

func (s *fakeRentRequestStore) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func (s *fakeRentRequestStore) DB() repository.Querier { return nil }

func (s *fakeRentRequestStore) Insert(_ context.Context, _ repository.Querier, rr *models.RentRequest) error {
	rr.ID = s.nextID
	s.nextID++
	cp := *rr
	s.requests[rr.RequestID] = &cp
	return nil
}

func (s *fakeRentRequestStore) GetByRequestID(_ context.Context, _ repository.Querier, requestID string) (*models.RentRequest, error) {
	r, ok := s.requests[requestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeRentRequestStore) List(_ context.Context, _ models.RentRequestFilter, _ models.PaginationParams, _ models.SearchParams) ([]models.RentRequest, int, error) {
	var out []models.RentRequest
	for _, r := range s.requests {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (s *fakeRentRequestStore) UpdateStatusGuarded(_ context.Context, _ repository.Querier, requestID string, expected, target models.RentRequestStatus, adminNotes, reviewedBy string, reviewedAt time.Time) (bool, error) {
	r, ok := s.requests[requestID]
	if !ok || r.Status != expected {
		return false, nil
	}
	r.Status = target
	r.AdminNotes = adminNotes
	r.ReviewedBy = reviewedBy
	r.ReviewedAt = &reviewedAt
	return true, nil
}

func (s *fakeRentRequestStore) HasRecentDuplicate(_ context.Context, email string, vehicleID int64, start, end, since time.Time) (bool, error) {
	for _, r := range s.requests {
		if strings.EqualFold(r.ClientEmail, email) &&
			r.VehicleID == vehicleID &&
			r.StartDate.Equal(start) && r.EndDate.Equal(end) &&
			r.Status != models.RentRequestStatusRejected &&
			!r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRentRequestStore) ListPendingCreatedBefore(_ context.Context, cutoff time.Time, limit int) ([]string, error) {
	var ids []string
	for _, r := range s.requests {
		if r.Status == models.RentRequestStatusPending && r.CreatedAt.Before(cutoff) {
			ids = append(ids, r.RequestID)
			if len(ids) == limit {
				break
			}
		}
	}
	return ids, nil
}

func (s *fakeRentRequestStore) ExpireMany(_ context.Context, _ repository.Querier, requestIDs []string, note, reviewedBy string, reviewedAt time.Time) (int64, error) {
	var n int64
	for _, id := range requestIDs {
		r, ok := s.requests[id]
		if !ok || r.Status != models.RentRequestStatusPending {
			continue
		}
		r.Status = models.RentRequestStatusRejected
		r.AdminNotes = note
		r.ReviewedBy = reviewedBy
		r.ReviewedAt = &reviewedAt
		n++
	}
	return n, nil
}

func (s *fakeRentRequestStore) AppendHistory(_ context.Context, _ repository.Querier, h *models.RentRequestStatusHistory) error {
	h.ID = int64(len(s.history) + 1)
	s.history = append(s.history, *h)
	return nil
}

func (s *fakeRentRequestStore) HistoryFor(_ context.Context, requestID string) ([]models.RentRequestStatusHistory, error) {
	var out []models.RentRequestStatusHistory
	for _, h := range s.history {
		if h.RequestID == requestID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeRentRequestStore) Delete(_ context.Context, requestID string) error {
	if _, ok := s.requests[requestID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.requests, requestID)
	return nil
}

// recordingNotifier counts notifications; fire-and-forget callers run it
// from goroutines, so access is guarded.
type recordingNotifier struct {
	mu            sync.Mutex
	confirmations int
	adminAlerts   int
	statusUpdates int
}

func (n *recordingNotifier) SendClientConfirmation(context.Context, *models.RentRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations++
}

func (n *recordingNotifier) SendAdminNotification(context.Context, *models.RentRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.adminAlerts++
}

func (n *recordingNotifier) SendStatusUpdate(context.Context, *models.RentRequest, models.RentRequestStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusUpdates++
}

func (n *recordingNotifier) counts() (int, int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.confirmations, n.adminAlerts, n.statusUpdates
}

type rentRequestFixture struct {
	store    *fakeRentRequestStore
	source   *fakeConflictSource
	notifier *recordingNotifier
	svc      *service.RentRequestService
}

func newRentRequestFixture(t *testing.T, now time.Time, requests ...*models.RentRequest) *rentRequestFixture {
	t.Helper()

	store := newFakeRentRequestStore(requests...)
	vehicles := &fakeVehicleStore{vehicles: map[int64]*models.Vehicle{
		1: {ID: 1, Make: "Renault", Model: "Clio 5", Year: 2022, LicensePlate: "16-20345-113",
			PricePerDay: decimal.NewFromInt(7500), Currency: "DZD", Availability: true, IsActive: true,
			ServiceTypes: []models.ServiceType{models.ServiceTypeIndividual}},
		2: {ID: 2, Make: "Hyundai", Model: "Tucson", Year: 2023, LicensePlate: "31-11876-114",
			PricePerDay: decimal.NewFromInt(14000), Currency: "DZD", Availability: false, IsActive: true,
			ServiceTypes: []models.ServiceType{models.ServiceTypeIndividual}},
	}}
	source := &fakeConflictSource{}
	notifier := &recordingNotifier{}

	svc := service.NewRentRequestService(store, vehicles, booking.NewDetector(source), notifier, fixedClock{now}, service.RentRequestPolicy{
		MinLeadTime:   24 * time.Hour,
		MaxRentalDays: 90,
		DedupeWindow:  time.Hour,
		ExpiryAge:     7 * 24 * time.Hour,
		BatchSize:     500,
	}, testLogger())
	return &rentRequestFixture{store: store, source: source, notifier: notifier, svc: svc}
}

func validIntakeRequest() models.CreateRentRequestRequest {
	return models.CreateRentRequestRequest{
		ClientName:  "  Karim Haddad ",
		ClientEmail: "karim.haddad@example.com",
		ClientPhone: "+213770123456",
		VehicleID:   1,
		StartDate:   date(2025, time.June, 5),
		EndDate:     date(2025, time.June, 8),
		Message:     "Besoin du véhicule pour un week-end",
	}
}

func pendingRequest(requestID string, createdAt time.Time) *models.RentRequest {
	return &models.RentRequest{
		RequestID:          requestID,
		ClientName:         "Karim Haddad",
		ClientEmail:        "karim.haddad@example.com",
		ClientPhone:        "+213770123456",
		VehicleID:          1,
		VehicleMake:        "Renault",
		VehicleModel:       "Clio 5",
		VehicleYear:        2022,
		VehiclePricePerDay: decimal.NewFromInt(7500),
		VehicleCurrency:    "DZD",
		StartDate:          date(2025, time.June, 5),
		EndDate:            date(2025, time.June, 8),
		Status:             models.RentRequestStatusPending,
		CreatedAt:          createdAt,
	}
}

func TestCreateRentRequest(t *testing.T) {
	fx := newRentRequestFixture(t, testNow)

	request, err := fx.svc.Create(context.Background(), validIntakeRequest())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(request.RequestID, "REQ_"), "request id: %s", request.RequestID)
	assert.Equal(t, models.RentRequestStatusPending, request.Status)
	assert.Equal(t, "Karim Haddad", request.ClientName, "name is trimmed")
	assert.Equal(t, testNow, request.CreatedAt)

	// vehicle snapshot captured at intake
	assert.Equal(t, "Renault", request.VehicleMake)
	assert.Equal(t, "Clio 5", request.VehicleModel)
	assert.Equal(t, 2022, request.VehicleYear)
	assert.True(t, request.VehiclePricePerDay.Equal(decimal.NewFromInt(7500)))
	assert.Equal(t, "DZD", request.VehicleCurrency)

	assert.Contains(t, fx.store.requests, request.RequestID)

	assert.Eventually(t, func() bool {
		confirmations, adminAlerts, _ := fx.notifier.counts()
		return confirmations == 1 && adminAlerts == 1
	}, time.Second, 10*time.Millisecond, "intake notifies client and staff")
}

func TestCreateRentRequestRejectsTakenInterval(t *testing.T) {
	// an approved request already binds June 5-8 on the vehicle, so the
	// intake reports the conflict instead of queueing a doomed request
	fx := newRentRequestFixture(t, testNow)
	fx.source.requests = []booking.Conflict{{
		Kind: booking.ConflictKindRentRequest, ID: 7, Identifier: "REQ_1_other", VehicleID: 1,
		StartDate: date(2025, time.June, 5), EndDate: date(2025, time.June, 8),
		Status: "APPROVED", ClientName: "Sophie Martin",
	}}

	_, err := fx.svc.Create(context.Background(), validIntakeRequest())
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	require.Len(t, service.ConflictsOf(err), 1)
	assert.Equal(t, "REQ_1_other", service.ConflictsOf(err)[0].Identifier)
	assert.Empty(t, fx.store.requests, "no request is written for a taken interval")
}

func TestCreateRentRequestRejectsBlockedByContract(t *testing.T) {
	fx := newRentRequestFixture(t, testNow)
	fx.source.contracts = []booking.Conflict{{
		Kind: booking.ConflictKindContract, ID: 1, Identifier: "CNT20250001", VehicleID: 1,
		StartDate: date(2025, time.June, 4), EndDate: date(2025, time.June, 9), Status: "CONFIRMED",
	}}

	_, err := fx.svc.Create(context.Background(), validIntakeRequest())
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
}

func TestCreateRentRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CreateRentRequestRequest)
		kind   service.Kind
	}{
		{"missing name", func(r *models.CreateRentRequestRequest) {
			r.ClientName = ""
		}, service.KindBadRequest},
		{"malformed email", func(r *models.CreateRentRequestRequest) {
			r.ClientEmail = "not-an-email"
		}, service.KindBadRequest},
		{"missing phone", func(r *models.CreateRentRequestRequest) {
			r.ClientPhone = ""
		}, service.KindBadRequest},
		{"zero vehicle id", func(r *models.CreateRentRequestRequest) {
			r.VehicleID = 0
		}, service.KindBadRequest},
		{"missing dates", func(r *models.CreateRentRequestRequest) {
			r.StartDate = time.Time{}
			r.EndDate = time.Time{}
		}, service.KindBadRequest},
		{"end before start", func(r *models.CreateRentRequestRequest) {
			r.EndDate = r.StartDate.AddDate(0, 0, -1)
		}, service.KindBadRequest},
		{"lead time too short", func(r *models.CreateRentRequestRequest) {
			r.StartDate = date(2025, time.June, 1)
			r.EndDate = date(2025, time.June, 4)
		}, service.KindBadRequest},
		{"duration too long", func(r *models.CreateRentRequestRequest) {
			r.EndDate = r.StartDate.AddDate(0, 0, 91)
		}, service.KindBadRequest},
		{"vehicle not bookable", func(r *models.CreateRentRequestRequest) {
			r.VehicleID = 2
		}, service.KindPreconditionFailed},
		{"unknown vehicle", func(r *models.CreateRentRequestRequest) {
			r.VehicleID = 99
		}, service.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newRentRequestFixture(t, testNow)
			req := validIntakeRequest()
			tt.mutate(&req)

			_, err := fx.svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, service.KindOf(err))
			assert.Empty(t, fx.store.requests, "no request should be written")
		})
	}
}

func TestCreateRentRequestDuplicateSuppression(t *testing.T) {
	existing := pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-30*time.Minute))
	fx := newRentRequestFixture(t, testNow, existing)

	_, err := fx.svc.Create(context.Background(), validIntakeRequest())
	require.Error(t, err)
	assert.Equal(t, service.KindDuplicate, service.KindOf(err))
}

func TestCreateRentRequestRejectedDuplicateDoesNotSuppress(t *testing.T) {
	rejected := pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-30*time.Minute))
	rejected.Status = models.RentRequestStatusRejected
	fx := newRentRequestFixture(t, testNow, rejected)

	_, err := fx.svc.Create(context.Background(), validIntakeRequest())
	require.NoError(t, err)
}

func TestCreateRentRequestOldDuplicateDoesNotSuppress(t *testing.T) {
	old := pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-2*time.Hour))
	fx := newRentRequestFixture(t, testNow, old)

	_, err := fx.svc.Create(context.Background(), validIntakeRequest())
	require.NoError(t, err)
}

func TestUpdateStatusApprove(t *testing.T) {
	fx := newRentRequestFixture(t, testNow, pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-time.Hour)))

	request, err := fx.svc.UpdateStatus(context.Background(), "REQ_1_aaaaaaaa", models.UpdateRentRequestStatusRequest{
		Status:     models.RentRequestStatusApproved,
		AdminNotes: "vehicle reserved",
	}, "admin@k2a.dz")
	require.NoError(t, err)

	assert.Equal(t, models.RentRequestStatusApproved, request.Status)
	assert.Equal(t, "admin@k2a.dz", request.ReviewedBy)
	require.NotNil(t, request.ReviewedAt)
	assert.Equal(t, testNow, *request.ReviewedAt)

	require.Len(t, fx.store.history, 1)
	h := fx.store.history[0]
	assert.Equal(t, models.RentRequestStatusPending, h.OldStatus)
	assert.Equal(t, models.RentRequestStatusApproved, h.NewStatus)
	assert.Equal(t, "admin@k2a.dz", h.ChangedBy)
	assert.Equal(t, "vehicle reserved", h.Notes)

	assert.Eventually(t, func() bool {
		_, _, updates := fx.notifier.counts()
		return updates == 1
	}, time.Second, 10*time.Millisecond)
}

func TestUpdateStatusApproveConflict(t *testing.T) {
	fx := newRentRequestFixture(t, testNow, pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-time.Hour)))
	fx.source.contracts = []booking.Conflict{{
		Kind: booking.ConflictKindContract, ID: 1, Identifier: "CNT20250001", VehicleID: 1,
		StartDate: date(2025, time.June, 7), EndDate: date(2025, time.June, 12), Status: "CONFIRMED",
	}}

	_, err := fx.svc.UpdateStatus(context.Background(), "REQ_1_aaaaaaaa", models.UpdateRentRequestStatusRequest{
		Status: models.RentRequestStatusApproved,
	}, "admin@k2a.dz")
	require.Error(t, err)

	assert.Equal(t, service.KindConflict, service.KindOf(err))
	require.Len(t, service.ConflictsOf(err), 1)
	assert.Equal(t, "CNT20250001", service.ConflictsOf(err)[0].Identifier)

	assert.Equal(t, models.RentRequestStatusPending, fx.store.requests["REQ_1_aaaaaaaa"].Status)
	assert.Empty(t, fx.store.history, "no audit row on a failed transition")
}

func TestUpdateStatusNonBlockingSkipsAvailability(t *testing.T) {
	fx := newRentRequestFixture(t, testNow, pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-time.Hour)))
	fx.source.contracts = []booking.Conflict{{
		Kind: booking.ConflictKindContract, ID: 1, Identifier: "CNT20250001", VehicleID: 1,
		StartDate: date(2025, time.June, 5), EndDate: date(2025, time.June, 8), Status: "ACTIVE",
	}}

	// REVIEWED does not bind availability, so the conflict is irrelevant
	request, err := fx.svc.UpdateStatus(context.Background(), "REQ_1_aaaaaaaa", models.UpdateRentRequestStatusRequest{
		Status: models.RentRequestStatusReviewed,
	}, "admin@k2a.dz")
	require.NoError(t, err)
	assert.Equal(t, models.RentRequestStatusReviewed, request.Status)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	rejected := pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-time.Hour))
	rejected.Status = models.RentRequestStatusRejected
	fx := newRentRequestFixture(t, testNow, rejected)

	_, err := fx.svc.UpdateStatus(context.Background(), "REQ_1_aaaaaaaa", models.UpdateRentRequestStatusRequest{
		Status: models.RentRequestStatusApproved,
	}, "admin@k2a.dz")
	require.Error(t, err)
	assert.Equal(t, service.KindInvalidTransition, service.KindOf(err))
}

func TestUpdateStatusUnknownRequest(t *testing.T) {
	fx := newRentRequestFixture(t, testNow)

	_, err := fx.svc.UpdateStatus(context.Background(), "REQ_missing", models.UpdateRentRequestStatusRequest{
		Status: models.RentRequestStatusReviewed,
	}, "admin@k2a.dz")
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestUpdateStatusDefaultsToSystemActor(t *testing.T) {
	fx := newRentRequestFixture(t, testNow, pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-time.Hour)))

	request, err := fx.svc.UpdateStatus(context.Background(), "REQ_1_aaaaaaaa", models.UpdateRentRequestStatusRequest{
		Status: models.RentRequestStatusContacted,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "System", request.ReviewedBy)
}

func TestExpirePending(t *testing.T) {
	old1 := pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-8*24*time.Hour))
	old2 := pendingRequest("REQ_2_bbbbbbbb", testNow.Add(-30*24*time.Hour))
	fresh := pendingRequest("REQ_3_cccccccc", testNow.Add(-time.Hour))
	approvedOld := pendingRequest("REQ_4_dddddddd", testNow.Add(-8*24*time.Hour))
	approvedOld.Status = models.RentRequestStatusApproved

	fx := newRentRequestFixture(t, testNow, old1, old2, fresh, approvedOld)

	expired, err := fx.svc.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	for _, id := range []string{"REQ_1_aaaaaaaa", "REQ_2_bbbbbbbb"} {
		r := fx.store.requests[id]
		assert.Equal(t, models.RentRequestStatusRejected, r.Status)
		assert.Equal(t, "Demande expirée automatiquement", r.AdminNotes)
		assert.Equal(t, "System", r.ReviewedBy)
	}
	assert.Equal(t, models.RentRequestStatusPending, fx.store.requests["REQ_3_cccccccc"].Status)
	assert.Equal(t, models.RentRequestStatusApproved, fx.store.requests["REQ_4_dddddddd"].Status)

	require.Len(t, fx.store.history, 2)
	assert.Equal(t, models.RentRequestStatusRejected, fx.store.history[0].NewStatus)
	assert.Equal(t, "System", fx.store.history[0].ChangedBy)

	// the sweep is idempotent
	again, err := fx.svc.ExpirePending(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestDeleteRentRequest(t *testing.T) {
	pending := pendingRequest("REQ_1_aaaaaaaa", testNow.Add(-time.Hour))
	rejected := pendingRequest("REQ_2_bbbbbbbb", testNow.Add(-time.Hour))
	rejected.Status = models.RentRequestStatusRejected
	fx := newRentRequestFixture(t, testNow, pending, rejected)

	err := fx.svc.Delete(context.Background(), "REQ_1_aaaaaaaa")
	require.Error(t, err)
	assert.Equal(t, service.KindPreconditionFailed, service.KindOf(err))

	require.NoError(t, fx.svc.Delete(context.Background(), "REQ_2_bbbbbbbb"))
	assert.NotContains(t, fx.store.requests, "REQ_2_bbbbbbbb")

	err = fx.svc.Delete(context.Background(), "REQ_missing")
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestHistoryForUnknownRequest(t *testing.T) {
	fx := newRentRequestFixture(t, testNow)

	_, err := fx.svc.History(context.Background(), "REQ_missing")
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}
