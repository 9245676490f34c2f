package bookings

import (
	"testing"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/settings"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed "now": Tuesday 2025-03-04, noon UTC (London is UTC in March).
func testCalendar(t *testing.T) *clock.Calendar {
	t.Helper()
	cal, err := clock.NewWithNow("Europe/London", func() time.Time {
		return time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)
	return cal
}

func openSettings() *settings.BookingSettings {
	return &settings.BookingSettings{
		BookingEnabled:   true,
		MaxPartySize:     8,
		MaxAdvanceDays:   30,
		AvailableTimes:   []string{"12:00", "19:00", "19:30"},
		ClosedDates:      []string{},
		ClosedDaysOfWeek: []int{1}, // Mondays
	}
}

func TestAvailabilityDisabledBookingAlwaysRejects(t *testing.T) {
	cal := testCalendar(t)
	s := openSettings()
	s.BookingEnabled = false

	rejection, err := EvaluateAvailability(s, cal, "2025-03-05", "19:00", 2)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "suspended")

	s.SuspensionMessage = "Closed for refurbishment until April."
	rejection, err = EvaluateAvailability(s, cal, "2025-03-05", "19:00", 2)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Equal(t, "Closed for refurbishment until April.", rejection.Reason)
}

func TestAvailabilityMaintenanceMode(t *testing.T) {
	cal := testCalendar(t)
	s := openSettings()
	s.MaintenanceMode = true

	rejection, err := EvaluateAvailability(s, cal, "2025-03-05", "19:00", 2)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "maintenance")
}

func TestAvailabilityPartySizeBoundary(t *testing.T) {
	cal := testCalendar(t)
	s := openSettings()

	rejection, err := EvaluateAvailability(s, cal, "2025-03-05", "19:00", 9)
	require.NoError(t, err)
	assert.NotNil(t, rejection, "above max party size rejects")

	rejection, err = EvaluateAvailability(s, cal, "2025-03-05", "19:00", 8)
	require.NoError(t, err)
	assert.Nil(t, rejection, "exactly max party size is accepted")
}

func TestAvailabilityAdvanceWindowBoundary(t *testing.T) {
	cal := testCalendar(t)
	s := openSettings()

	// today + 30 days = 2025-04-03 (a Thursday), still bookable.
	rejection, err := EvaluateAvailability(s, cal, "2025-04-03", "19:00", 2)
	require.NoError(t, err)
	assert.Nil(t, rejection, "boundary day is inclusive")

	rejection, err = EvaluateAvailability(s, cal, "2025-04-04", "19:00", 2)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "30 days")
}

func TestAvailabilityPastDate(t *testing.T) {
	cal := testCalendar(t)

	rejection, err := EvaluateAvailability(openSettings(), cal, "2025-03-03", "19:00", 2)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "past")
}

func TestAvailabilityUnknownTimeSlot(t *testing.T) {
	cal := testCalendar(t)

	rejection, err := EvaluateAvailability(openSettings(), cal, "2025-03-05", "15:45", 2)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "time slot")
}

func TestAvailabilityClosedDate(t *testing.T) {
	cal := testCalendar(t)
	s := openSettings()
	s.ClosedDates = []string{"2025-03-05"}

	rejection, err := EvaluateAvailability(s, cal, "2025-03-05", "19:00", 2)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "closed on this date")
}

func TestAvailabilityClosedWeekday(t *testing.T) {
	cal := testCalendar(t)
	s := openSettings()

	// 2025-03-10 is a Monday; Mondays are closed.
	rejection, err := EvaluateAvailability(s, cal, "2025-03-10", "19:00", 4)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "Monday")

	// The Tuesday after is fine.
	rejection, err = EvaluateAvailability(s, cal, "2025-03-11", "19:00", 4)
	require.NoError(t, err)
	assert.Nil(t, rejection)
}

func TestAvailabilityChecksRunInOrder(t *testing.T) {
	cal := testCalendar(t)
	s := openSettings()
	s.BookingEnabled = false
	s.MaintenanceMode = true

	// Suspension wins over maintenance when both apply.
	rejection, err := EvaluateAvailability(s, cal, "2025-03-10", "03:00", 99)
	require.NoError(t, err)
	require.NotNil(t, rejection)
	assert.Contains(t, rejection.Reason, "suspended")
}
