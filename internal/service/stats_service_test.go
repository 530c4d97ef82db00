package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/service"
)

func TestPctChange(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		want              float64
	}{
		{"growth", 150, 100, 50.0},
		{"decline", 50, 100, -50.0},
		{"flat", 100, 100, 0.0},
		{"rounded to one decimal", 100, 3, 3233.3},
		{"from zero to something", 5, 0, 100.0},
		{"zero to zero", 0, 0, 0.0},
		{"to zero", 0, 100, -100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, service.PctChange(tt.current, tt.previous), 0.001)
		})
	}
}

// fakeStatsStore records the requested windows and serves canned totals
type fakeStatsStore struct {
	stats   *models.ContractStats
	totals  map[time.Time]models.PeriodTotals // keyed by window start
	windows [][2]time.Time
}

func (s *fakeStatsStore) GetStats(context.Context) (*models.ContractStats, error) {
	return s.stats, nil
}

func (s *fakeStatsStore) GetPeriodTotals(_ context.Context, windowStart, windowEnd time.Time) (models.PeriodTotals, error) {
	s.windows = append(s.windows, [2]time.Time{windowStart, windowEnd})
	return s.totals[windowStart], nil
}

func TestStatsOverview(t *testing.T) {
	store := &fakeStatsStore{stats: &models.ContractStats{
		TotalContracts: 12,
		TotalRevenue:   decimal.NewFromInt(450000),
		PaidRevenue:    decimal.NewFromInt(300000),
		StatusBreakdown: map[models.ContractStatus]int{
			models.ContractStatusActive:    4,
			models.ContractStatusCompleted: 8,
		},
	}}
	svc := service.NewStatsService(store, fixedClock{testNow}, testLogger())

	stats, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalContracts)
	assert.Equal(t, 4, stats.StatusBreakdown[models.ContractStatusActive])
}

func TestStatsComparison(t *testing.T) {
	currentStart := testNow.AddDate(0, 0, -30)
	previousStart := testNow.AddDate(0, 0, -60)

	store := &fakeStatsStore{totals: map[time.Time]models.PeriodTotals{
		currentStart: {
			Contracts:   15,
			Revenue:     decimal.NewFromInt(300000),
			PaidRevenue: decimal.NewFromInt(120000),
		},
		previousStart: {
			Contracts:   10,
			Revenue:     decimal.NewFromInt(200000),
			PaidRevenue: decimal.Zero,
		},
	}}
	svc := service.NewStatsService(store, fixedClock{testNow}, testLogger())

	cmp, err := svc.Comparison(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 30, cmp.PeriodDays)
	assert.Equal(t, 15, cmp.Current.Contracts)
	assert.Equal(t, 10, cmp.Previous.Contracts)
	assert.InDelta(t, 50.0, cmp.Contracts.ChangePct, 0.001)
	assert.InDelta(t, 50.0, cmp.Revenue.ChangePct, 0.001)
	// zero previous paid revenue caps the change at +100
	assert.InDelta(t, 100.0, cmp.PaidRevenue.ChangePct, 0.001)

	// the two windows are adjacent and half-open on the left
	require.Len(t, store.windows, 2)
	assert.Equal(t, currentStart, store.windows[0][0])
	assert.Equal(t, testNow, store.windows[0][1])
	assert.Equal(t, previousStart, store.windows[1][0])
	assert.Equal(t, currentStart, store.windows[1][1])
}

func TestStatsComparisonRejectsBadPeriod(t *testing.T) {
	svc := service.NewStatsService(&fakeStatsStore{}, fixedClock{testNow}, testLogger())

	_, err := svc.Comparison(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, service.KindBadRequest, service.KindOf(err))
}
