package deposits

import (
	"context"
	"errors"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrBookingNotFound = errors.New("booking not found for payment intent")

type Repository interface {
	// RecordTransition inserts a ledger row and applies the booking's deposit
	// column updates in one transaction, so a delivery either fully lands or
	// leaves nothing behind for the provider's retry to dedup against. It
	// reports replay=true when a row for the same (provider_event_id, action)
	// already exists, leaving both the ledger and the booking untouched.
	RecordTransition(ctx context.Context, txn *DepositTransaction, bookingID uuid.UUID, updates map[string]interface{}) (replay bool, err error)

	FindBookingByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	FindBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*bookings.Booking, error)
	FindBookingByReference(ctx context.Context, reference string) (*bookings.Booking, error)

	// UpdateDepositFields applies absolute deposit column values to a booking
	// row. Callers pass complete target values, never deltas, so replayed
	// events converge on the same state.
	UpdateDepositFields(ctx context.Context, bookingID uuid.UUID, updates map[string]interface{}) error

	ListTransactions(ctx context.Context, bookingID uuid.UUID) ([]DepositTransaction, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// errReplayed aborts the transaction when the ledger insert hits the
// (provider_event_id, action) unique index.
var errReplayed = errors.New("transition already recorded")

func (r *repository) RecordTransition(ctx context.Context, txn *DepositTransaction, bookingID uuid.UUID, updates map[string]interface{}) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			// Relies on gorm's TranslateError to surface the unique violation
			// on (provider_event_id, action) as ErrDuplicatedKey.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errReplayed
			}
			return err
		}

		updates["updated_at"] = time.Now()
		return tx.Model(&bookings.Booking{}).
			Where("id = ?", bookingID).
			Updates(updates).Error
	})
	if errors.Is(err, errReplayed) {
		return true, nil
	}
	return false, err
}

func (r *repository) FindBookingByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	var booking bookings.Booking
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*bookings.Booking, error) {
	var booking bookings.Booking
	err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindBookingByReference(ctx context.Context, reference string) (*bookings.Booking, error) {
	var booking bookings.Booking
	err := r.db.WithContext(ctx).
		Where("booking_reference = ?", reference).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateDepositFields(ctx context.Context, bookingID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&bookings.Booking{}).
		Where("id = ?", bookingID).
		Updates(updates).Error
}

func (r *repository) ListTransactions(ctx context.Context, bookingID uuid.UUID) ([]DepositTransaction, error) {
	var txns []DepositTransaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&txns).Error
	return txns, err
}
