package reconfirm

import (
	"time"

	"github.com/google/uuid"
)

// Internal notification kinds
const (
	KindAutoCancelled  = "reconfirmation_auto_cancelled"
	KindNeedsFollowUp  = "reconfirmation_needs_follow_up"
	KindSecondReminder = "reconfirmation_second_reminder"
)

// InternalNotification is a staff-facing record of something that happened
// outside a request (sweep actions, mostly). Shown in the dashboard inbox.
type InternalNotification struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID      uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	Kind           string    `gorm:"type:varchar(50);not null" json:"kind"`
	Message        string    `gorm:"not null" json:"message"`
	RequiresAction bool      `gorm:"default:false" json:"requires_action"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName sets the table name for InternalNotification
func (InternalNotification) TableName() string {
	return "internal_notifications"
}

// BookingSummary is the public view behind a reconfirmation link.
type BookingSummary struct {
	BookingReference     string `json:"booking_reference"`
	CustomerName         string `json:"customer_name,omitempty"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	PartySize            int    `json:"party_size"`
	ReconfirmationStatus string `json:"reconfirmation_status"`
}

// ApplyRequest is the customer's response to a reconfirmation request.
type ApplyRequest struct {
	Action string `json:"action" binding:"required,oneof=confirm cancel"`
}

// SweepResult summarizes one expiry sweep run.
type SweepResult struct {
	AutoCancelled int      `json:"auto_cancelled"`
	Flagged       int      `json:"flagged"`
	Reminded      int      `json:"reminded"`
	Errors        []string `json:"errors,omitempty"`
}
