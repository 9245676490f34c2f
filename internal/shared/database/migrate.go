package database

import (
	"github.com/technoactive/donatheresa-website-sub002/internal/auth"
	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
	"github.com/technoactive/donatheresa-website-sub002/internal/customers"
	"github.com/technoactive/donatheresa-website-sub002/internal/deposits"
	"github.com/technoactive/donatheresa-website-sub002/internal/reconfirm"
	"github.com/technoactive/donatheresa-website-sub002/internal/settings"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&auth.StaffUser{},
		&settings.BookingSettings{},
		&customers.Customer{},
		&bookings.Booking{},
		&deposits.DepositTransaction{},
		&reconfirm.InternalNotification{},
	)
}
