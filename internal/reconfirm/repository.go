package reconfirm

import (
	"context"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// ListExpiredPending returns bookings whose reconfirmation deadline has
	// passed and whose reconfirmation status is still pending. Re-running the
	// sweep is idempotent because processed rows no longer match.
	ListExpiredPending(ctx context.Context, now time.Time) ([]bookings.Booking, error)

	ExtendDeadline(ctx context.Context, bookingID uuid.UUID, deadline time.Time) error
	AppendInternalNotification(ctx context.Context, n *InternalNotification) error
	ListInternalNotifications(ctx context.Context, limit int) ([]InternalNotification, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListExpiredPending(ctx context.Context, now time.Time) ([]bookings.Booking, error) {
	var expired []bookings.Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("reconfirmation_status = ?", bookings.ReconfirmPending).
		Where("reconfirmation_deadline IS NOT NULL").
		Where("reconfirmation_deadline < ?", now).
		Where("status <> ?", bookings.StatusCancelled).
		Order("reconfirmation_deadline ASC").
		Find(&expired).Error
	return expired, err
}

func (r *repository) ExtendDeadline(ctx context.Context, bookingID uuid.UUID, deadline time.Time) error {
	return r.db.WithContext(ctx).
		Model(&bookings.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"reconfirmation_deadline": deadline,
			"updated_at":              time.Now(),
		}).Error
}

func (r *repository) AppendInternalNotification(ctx context.Context, n *InternalNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListInternalNotifications(ctx context.Context, limit int) ([]InternalNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []InternalNotification
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}
