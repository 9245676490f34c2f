package cancellation

import (
	"testing"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"

	"github.com/stretchr/testify/assert"
)

func depositBooking(amount int64, status bookings.DepositStatus) *bookings.Booking {
	return &bookings.Booking{
		DepositRequired: true,
		DepositAmount:   &amount,
		DepositStatus:   status,
	}
}

func TestEvaluateFreeCancellationAlwaysReleases(t *testing.T) {
	booking := depositBooking(5000, bookings.DepositAuthorized)

	for _, percent := range []int{0, 50, 100} {
		decision := Evaluate(booking, 24, 24, percent)
		assert.Equal(t, ActionReleased, decision.Action, "percent %d", percent)
		assert.False(t, decision.Late)
		assert.Zero(t, decision.ChargeAmount)
	}
}

func TestEvaluateLateCancellationFullCharge(t *testing.T) {
	booking := depositBooking(5000, bookings.DepositAuthorized)

	decision := Evaluate(booking, 10, 24, 100)
	assert.True(t, decision.Late)
	assert.Equal(t, ActionCharged, decision.Action)
	assert.Equal(t, int64(5000), decision.ChargeAmount, "100%% charges the full amount exactly")
}

func TestEvaluateLateCancellationZeroPercentReleases(t *testing.T) {
	booking := depositBooking(5000, bookings.DepositAuthorized)

	decision := Evaluate(booking, 10, 24, 0)
	assert.True(t, decision.Late)
	assert.Equal(t, ActionReleased, decision.Action)
	assert.Zero(t, decision.ChargeAmount)
}

func TestEvaluatePartialCharge(t *testing.T) {
	booking := depositBooking(5000, bookings.DepositAuthorized)

	decision := Evaluate(booking, 10, 24, 50)
	assert.True(t, decision.Late)
	assert.Equal(t, ActionPartialCharge, decision.Action)
	assert.Equal(t, int64(2500), decision.ChargeAmount)
}

func TestEvaluateRoundsToNearestMinorUnit(t *testing.T) {
	booking := depositBooking(3333, bookings.DepositAuthorized)

	decision := Evaluate(booking, 1, 24, 33)
	// 3333 * 0.33 = 1099.89 -> 1100
	assert.Equal(t, int64(1100), decision.ChargeAmount)
}

func TestEvaluateBoundaryIsFree(t *testing.T) {
	booking := depositBooking(5000, bookings.DepositAuthorized)

	// Exactly at the free window boundary counts as free.
	decision := Evaluate(booking, 24.0, 24, 100)
	assert.Equal(t, ActionReleased, decision.Action)
	assert.False(t, decision.Late)
}

func TestEvaluateNoDepositHeld(t *testing.T) {
	tests := []struct {
		name    string
		booking *bookings.Booking
	}{
		{"no deposit required", &bookings.Booking{}},
		{"deposit not yet authorized", depositBooking(5000, bookings.DepositNone)},
		{"deposit already captured", depositBooking(5000, bookings.DepositCaptured)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Evaluate(tt.booking, 1, 24, 100)
			assert.Equal(t, ActionNone, decision.Action)
			assert.Zero(t, decision.ChargeAmount)
		})
	}
}
