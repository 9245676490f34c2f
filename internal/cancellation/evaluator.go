package cancellation

import (
	"fmt"
	"math"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
)

// Deposit actions a cancellation can settle with
const (
	ActionReleased      = "released"
	ActionPartialCharge = "partial_charged"
	ActionCharged       = "charged"
	ActionNone          = "none"
)

// Decision is the evaluator's verdict on what happens to a held deposit if
// the booking is cancelled now. It is purely advisory; settlement is a
// separate step.
type Decision struct {
	Late         bool   `json:"late"`
	Action       string `json:"action"`
	ChargeAmount int64  `json:"charge_amount"`
	Message      string `json:"message"`
}

// Evaluate applies the cancellation policy to a booking. Only authorized
// deposits have anything at stake; everything else settles as no-op.
//
// A cancellation inside the free window always releases the hold. A late
// cancellation charges late_cancel_charge_percent of the deposit, rounded to
// the nearest minor unit; 0 percent still releases and 100 percent charges
// the full amount exactly.
func Evaluate(booking *bookings.Booking, hoursUntilBooking float64, freeCancellationHours, lateCancelChargePercent int) Decision {
	if !booking.DepositRequired || booking.DepositAmount == nil ||
		booking.DepositStatus != bookings.DepositAuthorized {
		return Decision{
			Action:  ActionNone,
			Message: "No deposit is held for this booking.",
		}
	}

	amount := *booking.DepositAmount

	if hoursUntilBooking >= float64(freeCancellationHours) {
		return Decision{
			Action:  ActionReleased,
			Message: "Your deposit will be released in full.",
		}
	}

	switch {
	case lateCancelChargePercent <= 0:
		return Decision{
			Late:    true,
			Action:  ActionReleased,
			Message: "Your deposit will be released in full.",
		}
	case lateCancelChargePercent >= 100:
		return Decision{
			Late:         true,
			Action:       ActionCharged,
			ChargeAmount: amount,
			Message:      fmt.Sprintf("Cancelling within %d hours of your booking forfeits the full deposit.", freeCancellationHours),
		}
	default:
		charge := int64(math.Round(float64(amount) * float64(lateCancelChargePercent) / 100))
		return Decision{
			Late:         true,
			Action:       ActionPartialCharge,
			ChargeAmount: charge,
			Message:      fmt.Sprintf("Cancelling within %d hours of your booking incurs a %d%% deposit charge.", freeCancellationHours, lateCancelChargePercent),
		}
	}
}
