package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/customers"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("booking not found")

type Repository interface {
	// Core booking operations
	CreateWithCustomer(ctx context.Context, customer *customers.Customer, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByCancelToken(ctx context.Context, token string) (*Booking, error)
	GetByReconfirmToken(ctx context.Context, token string) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error
	UpdateReconfirmationStatus(ctx context.Context, id uuid.UUID, status ReconfirmationStatus) error

	// Duplicate guard
	FindActiveByCustomerAndDate(ctx context.Context, customerID uuid.UUID, date string) (*Booking, error)

	// Staff dashboard
	List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithCustomer is the admission workflow's single commit point: the
// customer upsert (by phone) and the booking insert happen in one
// transaction, so no partial booking can be left behind.
func (r *repository) CreateWithCustomer(ctx context.Context, customer *customers.Customer, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing customers.Customer
		err := tx.Where("phone = ?", customer.Phone).First(&existing).Error
		switch {
		case err == nil:
			// Reuse the record; refresh the name and upgrade a placeholder
			// email if the customer supplied a real one this time.
			updates := map[string]interface{}{"name": customer.Name}
			if existing.Email != customer.Email && !existing.HasRealEmail() {
				updates["email"] = customer.Email
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			*customer = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(customer).Error; err != nil {
				return err
			}
		default:
			return err
		}

		booking.CustomerID = customer.ID
		return tx.Create(booking).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetByCancelToken(ctx context.Context, token string) (*Booking, error) {
	return r.getOne(ctx, "cancel_token = ?", token)
}

func (r *repository) GetByReconfirmToken(ctx context.Context, token string) (*Booking, error) {
	return r.getOne(ctx, "reconfirm_token = ?", token)
}

func (r *repository) getOne(ctx context.Context, cond string, arg interface{}) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where(cond, arg).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if cancelledAt != nil {
		updates["cancelled_at"] = *cancelledAt
	}

	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateReconfirmationStatus(ctx context.Context, id uuid.UUID, status ReconfirmationStatus) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reconfirmation_status": status,
			"updated_at":            time.Now(),
		}).Error
}

// FindActiveByCustomerAndDate returns the customer's non-cancelled booking on
// the given date, if any. Used by the duplicate guard.
func (r *repository) FindActiveByCustomerAndDate(ctx context.Context, customerID uuid.UUID, date string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Where("booking_date = ?", date).
		Where("status <> ?", StatusCancelled).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	baseQuery := r.db.WithContext(ctx).Model(&Booking{})
	if query.Date != "" {
		baseQuery = baseQuery.Where("booking_date = ?", query.Date)
	}
	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Customer").
		Order("booking_date DESC, booking_time DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}
