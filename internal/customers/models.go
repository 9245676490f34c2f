package customers

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer is a diner identified by phone number. One record per phone;
// repeat bookings from the same phone reuse it.
type Customer struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Phone string    `gorm:"uniqueIndex;not null" json:"phone"`
	Email string    `gorm:"not null" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

const placeholderDomain = "no-email.donatheresa.co.uk"

// NormalizePhone strips spaces and separators so the same number always maps
// to the same customer record.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PlaceholderEmail synthesizes an addressable email for customers who did not
// supply one, derived from the phone number.
func PlaceholderEmail(phone string) string {
	digits := strings.TrimPrefix(NormalizePhone(phone), "+")
	return fmt.Sprintf("guest-%s@%s", digits, placeholderDomain)
}

// HasRealEmail reports whether the stored email was supplied by the customer
// rather than synthesized.
func (c *Customer) HasRealEmail() bool {
	return !strings.HasSuffix(c.Email, "@"+placeholderDomain)
}
