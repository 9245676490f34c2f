package settings

import "time"

// Reconfirmation no-response actions
const (
	NoResponseAutoCancel     = "auto_cancel"
	NoResponseFlagOnly       = "flag_only"
	NoResponseSecondReminder = "second_reminder"
)

// BookingSettings is the operator-editable booking policy. A single row
// (ID=1) exists; every admission attempt reads it fresh so policy edits take
// effect immediately.
type BookingSettings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingEnabled    bool   `gorm:"default:true" json:"booking_enabled"`
	MaintenanceMode   bool   `gorm:"default:false" json:"maintenance_mode"`
	SuspensionMessage string `json:"suspension_message,omitempty"`

	MaxPartySize   int `gorm:"default:8" json:"max_party_size"`
	MaxAdvanceDays int `gorm:"default:30" json:"max_advance_days"`

	// Canonical "HH:MM" slots, "YYYY-MM-DD" dates and weekday numbers
	// (0=Sunday) kept as open-ended sets, not compile-time constants.
	AvailableTimes   []string `gorm:"serializer:json;type:jsonb" json:"available_times"`
	ClosedDates      []string `gorm:"serializer:json;type:jsonb" json:"closed_dates"`
	ClosedDaysOfWeek []int    `gorm:"serializer:json;type:jsonb" json:"closed_days_of_week"`

	// Deposit policy (amounts in minor currency units)
	DepositRequired         bool  `gorm:"default:false" json:"deposit_required"`
	DepositAmount           int64 `gorm:"default:0" json:"deposit_amount"`
	FreeCancellationHours   int   `gorm:"default:24" json:"free_cancellation_hours"`
	LateCancelChargePercent int   `gorm:"default:0" json:"late_cancel_charge_percent"`

	// Reconfirmation policy
	ReconfirmationEnabled       bool   `gorm:"default:false" json:"reconfirmation_enabled"`
	ReconfirmationDeadlineHours int    `gorm:"default:24" json:"reconfirmation_deadline_hours"`
	NoResponseAction            string `gorm:"type:varchar(20);default:'flag_only'" json:"no_response_action"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for BookingSettings
func (BookingSettings) TableName() string {
	return "booking_settings"
}

// IsTimeAvailable reports whether the slot is one of the bookable times.
func (s *BookingSettings) IsTimeAvailable(slot string) bool {
	for _, t := range s.AvailableTimes {
		if t == slot {
			return true
		}
	}
	return false
}

// IsDateClosed reports whether the restaurant is closed on the given date.
func (s *BookingSettings) IsDateClosed(date string) bool {
	for _, d := range s.ClosedDates {
		if d == date {
			return true
		}
	}
	return false
}

// IsWeekdayClosed reports whether the weekday (0=Sunday) is a closed day.
func (s *BookingSettings) IsWeekdayClosed(weekday int) bool {
	for _, d := range s.ClosedDaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

// UpdateSettingsRequest is the staff-facing settings update payload
type UpdateSettingsRequest struct {
	BookingEnabled    *bool   `json:"booking_enabled"`
	MaintenanceMode   *bool   `json:"maintenance_mode"`
	SuspensionMessage *string `json:"suspension_message"`

	MaxPartySize   *int `json:"max_party_size" binding:"omitempty,min=1"`
	MaxAdvanceDays *int `json:"max_advance_days" binding:"omitempty,min=1"`

	AvailableTimes   *[]string `json:"available_times"`
	ClosedDates      *[]string `json:"closed_dates"`
	ClosedDaysOfWeek *[]int    `json:"closed_days_of_week" binding:"omitempty,dive,min=0,max=6"`

	DepositRequired         *bool  `json:"deposit_required"`
	DepositAmount           *int64 `json:"deposit_amount" binding:"omitempty,min=0"`
	FreeCancellationHours   *int   `json:"free_cancellation_hours" binding:"omitempty,min=0"`
	LateCancelChargePercent *int   `json:"late_cancel_charge_percent" binding:"omitempty,min=0,max=100"`

	ReconfirmationEnabled       *bool   `json:"reconfirmation_enabled"`
	ReconfirmationDeadlineHours *int    `json:"reconfirmation_deadline_hours" binding:"omitempty,min=1"`
	NoResponseAction            *string `json:"no_response_action" binding:"omitempty,oneof=auto_cancel flag_only second_reminder"`
}
