package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedfrix/k2a-backend-sub000/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestContractTransitions(t *testing.T) {
	tests := []struct {
		from    models.ContractStatus
		to      models.ContractStatus
		allowed bool
	}{
		{models.ContractStatusPending, models.ContractStatusConfirmed, true},
		{models.ContractStatusPending, models.ContractStatusCancelled, true},
		{models.ContractStatusPending, models.ContractStatusActive, false},
		{models.ContractStatusPending, models.ContractStatusCompleted, false},
		{models.ContractStatusConfirmed, models.ContractStatusActive, true},
		{models.ContractStatusConfirmed, models.ContractStatusCancelled, true},
		{models.ContractStatusConfirmed, models.ContractStatusCompleted, false},
		{models.ContractStatusConfirmed, models.ContractStatusPending, false},
		{models.ContractStatusActive, models.ContractStatusCompleted, true},
		{models.ContractStatusActive, models.ContractStatusCancelled, true},
		{models.ContractStatusActive, models.ContractStatusConfirmed, false},
		{models.ContractStatusCompleted, models.ContractStatusCancelled, false},
		{models.ContractStatusCancelled, models.ContractStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestContractStatusIsTerminal(t *testing.T) {
	assert.True(t, models.ContractStatusCompleted.IsTerminal())
	assert.True(t, models.ContractStatusCancelled.IsTerminal())
	assert.False(t, models.ContractStatusPending.IsTerminal())
	assert.False(t, models.ContractStatusConfirmed.IsTerminal())
	assert.False(t, models.ContractStatusActive.IsTerminal())
}

func TestDerivePaymentStatus(t *testing.T) {
	total := decimal.NewFromInt(1000)

	assert.Equal(t, models.PaymentStatusPending, models.DerivePaymentStatus(decimal.Zero, total))
	assert.Equal(t, models.PaymentStatusPartial, models.DerivePaymentStatus(decimal.NewFromInt(1), total))
	assert.Equal(t, models.PaymentStatusPartial, models.DerivePaymentStatus(decimal.NewFromInt(999), total))
	assert.Equal(t, models.PaymentStatusPaid, models.DerivePaymentStatus(total, total))
	assert.Equal(t, models.PaymentStatusPaid, models.DerivePaymentStatus(decimal.NewFromInt(1500), total))
}

func TestRentalDays(t *testing.T) {
	start := date(2025, time.March, 10)

	assert.Equal(t, 1, models.RentalDays(start, date(2025, time.March, 11)))
	assert.Equal(t, 5, models.RentalDays(start, date(2025, time.March, 15)))
	assert.Equal(t, 0, models.RentalDays(start, start))
}

func TestRentalDaysAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// clocks fall back on Nov 2 2025: the extra hour must not add a day
	fallStart := time.Date(2025, time.November, 1, 0, 0, 0, 0, loc)
	fallEnd := time.Date(2025, time.November, 3, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, models.RentalDays(fallStart, fallEnd))

	// clocks spring forward on Mar 8 2026: the missing hour must not drop one
	springStart := time.Date(2026, time.March, 7, 0, 0, 0, 0, loc)
	springEnd := time.Date(2026, time.March, 9, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, models.RentalDays(springStart, springEnd))
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, time.June, 3, 17, 45, 12, 999, time.Local)
	got := models.DateOnly(ts)

	assert.Equal(t, date(2025, time.June, 3), got)
	assert.Equal(t, 0, got.Hour())
}

func TestComputeDerived(t *testing.T) {
	c := &models.Contract{
		StartDate:      date(2025, time.July, 1),
		EndDate:        date(2025, time.July, 6),
		DailyRate:      decimal.NewFromFloat(120.50),
		DiscountAmount: decimal.NewFromInt(50),
		PaidAmount:     decimal.Zero,
		Accessories: []models.ContractAccessory{
			{Name: "GPS", UnitPrice: decimal.NewFromFloat(10.25), Quantity: 2},
			{Name: "Child seat", UnitPrice: decimal.NewFromInt(15), Quantity: 1},
		},
	}

	c.ComputeDerived()

	assert.Equal(t, 5, c.TotalDays)
	assert.True(t, c.AccessoriesTotal.Equal(decimal.NewFromFloat(35.50)), "accessories total: %s", c.AccessoriesTotal)
	assert.True(t, c.Subtotal.Equal(decimal.NewFromFloat(602.50)), "subtotal: %s", c.Subtotal)
	assert.True(t, c.TotalAmount.Equal(decimal.NewFromFloat(588.00)), "total: %s", c.TotalAmount)
	assert.Equal(t, models.PaymentStatusPending, c.PaymentStatus)
}

func TestComputeDerivedPaymentBucketFollowsTotal(t *testing.T) {
	c := &models.Contract{
		StartDate:  date(2025, time.July, 1),
		EndDate:    date(2025, time.July, 3),
		DailyRate:  decimal.NewFromInt(100),
		PaidAmount: decimal.NewFromInt(200),
	}

	c.ComputeDerived()

	assert.True(t, c.TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, models.PaymentStatusPaid, c.PaymentStatus)
}

func TestAccessoryLineTotal(t *testing.T) {
	a := models.ContractAccessory{UnitPrice: decimal.NewFromFloat(12.5), Quantity: 3}
	assert.True(t, a.LineTotal().Equal(decimal.NewFromFloat(37.5)))
}
