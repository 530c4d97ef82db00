package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/booking"
	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

// StatsStore is the reporting surface used by the service
type StatsStore interface {
	GetStats(ctx context.Context) (*models.ContractStats, error)
	GetPeriodTotals(ctx context.Context, windowStart, windowEnd time.Time) (models.PeriodTotals, error)
}

// StatsService owns the reporting reads: global aggregates and
// period-over-period comparisons.
type StatsService struct {
	store  StatsStore
	clock  booking.Clock
	logger *slog.Logger
}

// NewStatsService creates a StatsService
func NewStatsService(store StatsStore, clock booking.Clock, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		clock:  clock,
		logger: logger.With("component", "stats_service"),
	}
}

// Overview returns the global contract aggregates
func (s *StatsService) Overview(ctx context.Context) (*models.ContractStats, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return nil, internal("load contract stats", err)
	}
	return stats, nil
}

// Comparison compares the window (now-P, now] against (now-2P, now-P]
// for contracts created in each window.
func (s *StatsService) Comparison(ctx context.Context, periodDays int) (*models.StatsComparison, error) {
	if periodDays < 1 {
		return nil, E(KindBadRequest, "period_days must be at least 1")
	}

	now := s.clock.Now()
	currentStart := now.AddDate(0, 0, -periodDays)
	previousStart := now.AddDate(0, 0, -2*periodDays)

	current, err := s.store.GetPeriodTotals(ctx, currentStart, now)
	if err != nil {
		return nil, internal("load current period totals", err)
	}
	previous, err := s.store.GetPeriodTotals(ctx, previousStart, currentStart)
	if err != nil {
		return nil, internal("load previous period totals", err)
	}

	return &models.StatsComparison{
		PeriodDays:  periodDays,
		Current:     current,
		Previous:    previous,
		Contracts:   models.MetricChange{ChangePct: PctChange(float64(current.Contracts), float64(previous.Contracts))},
		Revenue:     models.MetricChange{ChangePct: PctChange(current.Revenue.InexactFloat64(), previous.Revenue.InexactFloat64())},
		PaidRevenue: models.MetricChange{ChangePct: PctChange(current.PaidRevenue.InexactFloat64(), previous.PaidRevenue.InexactFloat64())},
	}, nil
}

// PctChange computes the percentage change from previous to current,
// rounded to one decimal. A zero previous value yields +100.0 when the
// current value is positive and 0.0 when both are zero.
func PctChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	change := (current - previous) / previous * 100
	return math.Round(change*10) / 10
}
