package customers

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("customer not found")

// Repository looks customers up for the duplicate guard. Writes happen inside
// the booking admission transaction, not here.
type Repository interface {
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByPhone(ctx context.Context, phone string) (*Customer, error) {
	var customer Customer
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}
