package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{
			name:   "disjoint before",
			aStart: date(2025, 3, 1), aEnd: date(2025, 3, 5),
			bStart: date(2025, 3, 6), bEnd: date(2025, 3, 10),
			want: false,
		},
		{
			name:   "touching endpoints conflict",
			aStart: date(2025, 3, 1), aEnd: date(2025, 3, 5),
			bStart: date(2025, 3, 5), bEnd: date(2025, 3, 10),
			want: true,
		},
		{
			name:   "contained",
			aStart: date(2025, 3, 2), aEnd: date(2025, 3, 4),
			bStart: date(2025, 3, 1), bEnd: date(2025, 3, 10),
			want: true,
		},
		{
			name:   "identical single day",
			aStart: date(2025, 3, 7), aEnd: date(2025, 3, 7),
			bStart: date(2025, 3, 7), bEnd: date(2025, 3, 7),
			want: true,
		},
		{
			name:   "disjoint after",
			aStart: date(2025, 3, 11), aEnd: date(2025, 3, 12),
			bStart: date(2025, 3, 1), bEnd: date(2025, 3, 10),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booking.Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// the predicate is symmetric
			assert.Equal(t, tt.want, booking.Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

// fakeSource is an in-memory ConflictSource for detector tests
type fakeSource struct {
	contracts []booking.Conflict
	requests  []booking.Conflict
}

func (f *fakeSource) FindConflictingContracts(_ context.Context, _ booking.Querier, vehicleID int64, start, end time.Time, excludeID int64) ([]booking.Conflict, error) {
	var out []booking.Conflict
	for _, c := range f.contracts {
		if c.VehicleID != vehicleID || c.ID == excludeID {
			continue
		}
		if booking.Overlaps(start, end, c.StartDate, c.EndDate) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) FindConflictingRequests(_ context.Context, _ booking.Querier, vehicleID int64, start, end time.Time, excludeRequestID string) ([]booking.Conflict, error) {
	var out []booking.Conflict
	for _, c := range f.requests {
		if c.VehicleID != vehicleID || c.Identifier == excludeRequestID {
			continue
		}
		if booking.Overlaps(start, end, c.StartDate, c.EndDate) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) BulkFindConflicts(_ context.Context, vehicleIDs []int64, minStart, maxEnd time.Time) ([]booking.Conflict, []booking.Conflict, error) {
	wanted := make(map[int64]bool, len(vehicleIDs))
	for _, id := range vehicleIDs {
		wanted[id] = true
	}
	filter := func(in []booking.Conflict) []booking.Conflict {
		var out []booking.Conflict
		for _, c := range in {
			if wanted[c.VehicleID] && booking.Overlaps(minStart, maxEnd, c.StartDate, c.EndDate) {
				out = append(out, c)
			}
		}
		return out
	}
	return filter(f.contracts), filter(f.requests), nil
}

func TestDetectorIsAvailable(t *testing.T) {
	src := &fakeSource{
		contracts: []booking.Conflict{
			{Kind: booking.ConflictKindContract, ID: 1, Identifier: "CNT20250001", VehicleID: 7,
				StartDate: date(2025, 3, 10), EndDate: date(2025, 3, 15), Status: "CONFIRMED", ClientName: "Jean Dupont"},
		},
		requests: []booking.Conflict{
			{Kind: booking.ConflictKindRentRequest, ID: 2, Identifier: "REQ_1_aa", VehicleID: 7,
				StartDate: date(2025, 3, 20), EndDate: date(2025, 3, 22), Status: "APPROVED", ClientName: "Amina Benali"},
		},
	}
	d := booking.NewDetector(src)
	ctx := context.Background()

	t.Run("free interval", func(t *testing.T) {
		got, err := d.IsAvailable(ctx, nil, 7, date(2025, 3, 16), date(2025, 3, 19), booking.CheckOptions{})
		require.NoError(t, err)
		assert.True(t, got.Available)
		assert.Empty(t, got.Conflicts)
	})

	t.Run("contract conflict", func(t *testing.T) {
		got, err := d.IsAvailable(ctx, nil, 7, date(2025, 3, 15), date(2025, 3, 18), booking.CheckOptions{})
		require.NoError(t, err)
		assert.False(t, got.Available)
		require.Len(t, got.Conflicts, 1)
		assert.Equal(t, booking.ConflictKindContract, got.Conflicts[0].Kind)
	})

	t.Run("both kinds conflict", func(t *testing.T) {
		got, err := d.IsAvailable(ctx, nil, 7, date(2025, 3, 14), date(2025, 3, 21), booking.CheckOptions{})
		require.NoError(t, err)
		assert.False(t, got.Available)
		assert.Len(t, got.Conflicts, 2)
	})

	t.Run("exclude self contract", func(t *testing.T) {
		got, err := d.IsAvailable(ctx, nil, 7, date(2025, 3, 10), date(2025, 3, 15), booking.CheckOptions{ExcludeContractID: 1})
		require.NoError(t, err)
		assert.True(t, got.Available)
	})

	t.Run("other vehicle unaffected", func(t *testing.T) {
		got, err := d.IsAvailable(ctx, nil, 8, date(2025, 3, 10), date(2025, 3, 15), booking.CheckOptions{})
		require.NoError(t, err)
		assert.True(t, got.Available)
	})
}

func TestDetectorApprovabilityOf(t *testing.T) {
	src := &fakeSource{
		contracts: []booking.Conflict{
			{Kind: booking.ConflictKindContract, ID: 1, Identifier: "CNT20250001", VehicleID: 1,
				StartDate: date(2025, 5, 1), EndDate: date(2025, 5, 10), Status: "ACTIVE"},
		},
		requests: []booking.Conflict{
			{Kind: booking.ConflictKindRentRequest, ID: 9, Identifier: "REQ_self", VehicleID: 2,
				StartDate: date(2025, 5, 3), EndDate: date(2025, 5, 6), Status: "APPROVED"},
		},
	}
	d := booking.NewDetector(src)

	requests := []models.RentRequest{
		{RequestID: "REQ_blocked", VehicleID: 1, Status: models.RentRequestStatusPending,
			StartDate: date(2025, 5, 8), EndDate: date(2025, 5, 12)},
		{RequestID: "REQ_free", VehicleID: 1, Status: models.RentRequestStatusPending,
			StartDate: date(2025, 5, 11), EndDate: date(2025, 5, 14)},
		{RequestID: "REQ_self", VehicleID: 2, Status: models.RentRequestStatusPending,
			StartDate: date(2025, 5, 3), EndDate: date(2025, 5, 6)},
		{RequestID: "REQ_done", VehicleID: 1, Status: models.RentRequestStatusConfirmed,
			StartDate: date(2025, 5, 1), EndDate: date(2025, 5, 2)},
	}

	got, err := d.ApprovabilityOf(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.False(t, got["REQ_blocked"].Approvable)
	require.Len(t, got["REQ_blocked"].Conflicts, 1)
	assert.Equal(t, "CNT20250001", got["REQ_blocked"].Conflicts[0].Identifier)

	assert.True(t, got["REQ_free"].Approvable)

	// a request never conflicts with itself
	assert.True(t, got["REQ_self"].Approvable)

	// non-PENDING is reported non-approvable with no conflicts
	assert.False(t, got["REQ_done"].Approvable)
	assert.Empty(t, got["REQ_done"].Conflicts)
}

func TestDetectorApprovabilityOfEmpty(t *testing.T) {
	d := booking.NewDetector(&fakeSource{})
	got, err := d.ApprovabilityOf(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSummary(t *testing.T) {
	conflicts := []booking.Conflict{
		{Kind: booking.ConflictKindContract, Identifier: "CNT20250001", ClientName: "Jean Dupont"},
		{Kind: booking.ConflictKindRentRequest, Identifier: "REQ_1_aa", ClientName: "Amina Benali"},
	}
	assert.Equal(t, "CONTRACT CNT20250001 (Jean Dupont), RENT_REQUEST REQ_1_aa (Amina Benali)", booking.Summary(conflicts))
	assert.Equal(t, "", booking.Summary(nil))
}
