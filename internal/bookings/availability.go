package bookings

import (
	"fmt"

	"github.com/technoactive/donatheresa-website-sub002/internal/settings"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"
)

// Rejection is a policy refusal with a user-facing reason. A nil *Rejection
// means the request is admissible.
type Rejection struct {
	Reason string
}

func reject(format string, args ...interface{}) *Rejection {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// EvaluateAvailability runs the admission policy checks in order; the first
// failure wins. It is pure: no side effects, no persistence.
func EvaluateAvailability(s *settings.BookingSettings, cal *clock.Calendar, date, timeSlot string, partySize int) (*Rejection, error) {
	if !s.BookingEnabled {
		if s.SuspensionMessage != "" {
			return &Rejection{Reason: s.SuspensionMessage}, nil
		}
		return reject("Online booking is currently suspended. Please call us to reserve a table."), nil
	}

	if s.MaintenanceMode {
		return reject("Our booking system is under maintenance. Please try again shortly."), nil
	}

	if partySize > s.MaxPartySize {
		return reject("We can accommodate parties of up to %d online. For larger groups, please call us.", s.MaxPartySize), nil
	}

	past, err := cal.IsPastDate(date)
	if err != nil {
		return nil, err
	}
	if past {
		return reject("Bookings cannot be made for past dates."), nil
	}

	days, err := cal.DaysFromToday(date)
	if err != nil {
		return nil, err
	}
	// Boundary inclusive: today+max_advance_days is still bookable.
	if days > s.MaxAdvanceDays {
		return reject("Bookings can be made at most %d days in advance.", s.MaxAdvanceDays), nil
	}

	if !s.IsTimeAvailable(timeSlot) {
		return reject("That time slot is not available."), nil
	}

	if s.IsDateClosed(date) {
		return reject("The restaurant is closed on this date."), nil
	}

	weekday, err := clock.WeekdayOf(date)
	if err != nil {
		return nil, err
	}
	if s.IsWeekdayClosed(int(weekday)) {
		return reject("The restaurant is closed on %ss.", weekday.String()), nil
	}

	return nil, nil
}
