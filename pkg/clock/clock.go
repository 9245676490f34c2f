package clock

import (
	"fmt"
	"time"
)

// DateLayout is the canonical wire format for booking dates.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical wire format for booking time slots.
const TimeLayout = "15:04"

// Calendar performs calendar arithmetic in the restaurant's local timezone.
//
// Booking dates are treated as timezone-naive calendar dates: the weekday of
// "2025-03-10" is always Monday no matter where the caller is. Only "today"
// and hours-until calculations involve the configured location.
type Calendar struct {
	location *time.Location
	nowFunc  func() time.Time
}

// New creates a Calendar for the given IANA timezone name (e.g. "Europe/London").
func New(timezone string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid restaurant timezone %q: %w", timezone, err)
	}
	return &Calendar{location: loc, nowFunc: time.Now}, nil
}

// NewWithNow creates a Calendar with an injected time source, for tests.
func NewWithNow(timezone string, nowFunc func() time.Time) (*Calendar, error) {
	cal, err := New(timezone)
	if err != nil {
		return nil, err
	}
	cal.nowFunc = nowFunc
	return cal, nil
}

// Location returns the restaurant's timezone.
func (c *Calendar) Location() *time.Location {
	return c.location
}

// Now returns the current instant.
func (c *Calendar) Now() time.Time {
	return c.nowFunc()
}

// Today returns the current calendar date in the restaurant's timezone,
// truncated to midnight.
func (c *Calendar) Today() time.Time {
	now := c.nowFunc().In(c.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD booking date as a naive calendar date.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d, nil
}

// ParseTime parses an HH:MM time slot.
func ParseTime(slot string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, slot)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", slot, err)
	}
	return t, nil
}

// IsPastDate reports whether the given date is strictly before today in the
// restaurant's timezone.
func (c *Calendar) IsPastDate(date string) (bool, error) {
	d, err := ParseDate(date)
	if err != nil {
		return false, err
	}
	return d.Before(c.Today()), nil
}

// DaysFromToday returns how many whole days after today the given date falls.
// Negative values mean the date is in the past.
func (c *Calendar) DaysFromToday(date string) (int, error) {
	d, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(d.Sub(c.Today()).Hours() / 24), nil
}

// WeekdayOf returns the calendar weekday of a naive booking date.
// Sunday is 0, matching the stored closed-day convention.
func WeekdayOf(date string) (time.Weekday, error) {
	d, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return d.Weekday(), nil
}

// CombineDateTime resolves a naive date + HH:MM slot into an absolute instant
// in the restaurant's timezone.
func (c *Calendar) CombineDateTime(date, slot string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	t, err := ParseTime(slot)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, c.location), nil
}

// HoursUntil returns the number of hours from now until the booking's
// date/time, resolved in the restaurant's timezone.
func (c *Calendar) HoursUntil(date, slot string) (float64, error) {
	at, err := c.CombineDateTime(date, slot)
	if err != nil {
		return 0, err
	}
	return at.Sub(c.nowFunc()).Hours(), nil
}
