package bookings

import (
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/customers"

	"github.com/google/uuid"
)

// Booking defines the main booking structure
type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`

	// Naive calendar date (YYYY-MM-DD) and slot (HH:MM); the restaurant
	// timezone is only consulted when resolving them to an instant.
	BookingDate string `gorm:"type:date;index;not null" json:"booking_date"`
	BookingTime string `gorm:"type:varchar(5);not null" json:"booking_time"`

	PartySize        int    `gorm:"not null" json:"party_size"`
	Status           Status `gorm:"type:varchar(20);default:'confirmed';index" json:"status"`
	SpecialRequests  string `json:"special_requests,omitempty"`
	BookingReference string `gorm:"uniqueIndex;not null" json:"booking_reference"`
	Source           string `gorm:"type:varchar(20);default:'website'" json:"source"`

	// Deposit fields (amounts in minor currency units)
	DepositRequired     bool          `gorm:"default:false" json:"deposit_required"`
	DepositAmount       *int64        `json:"deposit_amount,omitempty"`
	DepositStatus       DepositStatus `gorm:"type:varchar(20);default:'none'" json:"deposit_status"`
	DepositRefundAmount *int64        `json:"deposit_refund_amount,omitempty"`
	DepositCapturedAt   *time.Time    `json:"deposit_captured_at,omitempty"`
	DepositRefundedAt   *time.Time    `json:"deposit_refunded_at,omitempty"`

	// Payment provider correlation
	PaymentIntentID *string `gorm:"index" json:"payment_intent_id,omitempty"`

	// Reconfirmation fields
	ReconfirmationStatus   ReconfirmationStatus `gorm:"type:varchar(20);default:'confirmed'" json:"reconfirmation_status"`
	ReconfirmationDeadline *time.Time           `gorm:"index" json:"reconfirmation_deadline,omitempty"`
	ReconfirmToken         string               `gorm:"uniqueIndex" json:"-"`

	// Capability token for the public cancellation link
	CancelToken string `gorm:"uniqueIndex" json:"-"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Relationships
	Customer *customers.Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// Helper methods for booking management
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) Cancel() {
	b.Status = StatusCancelled
	now := time.Now()
	b.CancelledAt = &now
	b.UpdatedAt = now
}

// CreateBookingRequest is the public booking form payload
type CreateBookingRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"required,min=7,max=20"`
	PartySize int    `json:"partySize" binding:"required,min=1"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Notes     string `json:"notes" binding:"omitempty,max=500"`
}

// BookingResult is the structured outcome of an admission attempt. Expected
// policy rejections arrive here with Success=false; only unexpected failures
// surface as errors.
type BookingResult struct {
	Success          bool   `json:"success"`
	BookingID        string `json:"bookingId,omitempty"`
	BookingReference string `json:"bookingReference,omitempty"`
	Message          string `json:"message"`
	Description      string `json:"description,omitempty"`
}

// BookingListQuery filters the staff booking list
type BookingListQuery struct {
	Date   string `form:"date"`
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
