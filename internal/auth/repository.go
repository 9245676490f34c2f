package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("staff user not found")

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*StaffUser, error)
	Create(ctx context.Context, user *StaffUser) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*StaffUser, error) {
	var user StaffUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) Create(ctx context.Context, user *StaffUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&StaffUser{}).Count(&count).Error
	return count, err
}
