package settings

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context) (*BookingSettings, error)
	Save(ctx context.Context, s *BookingSettings) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Get fetches the singleton settings row, creating it with defaults on first
// access so the admission workflow never sees a missing-policy state.
func (r *repository) Get(ctx context.Context) (*BookingSettings, error) {
	var s BookingSettings
	err := r.db.WithContext(ctx).
		Where(&BookingSettings{ID: 1}).
		Attrs(defaultSettings()).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Save(ctx context.Context, s *BookingSettings) error {
	s.ID = 1
	return r.db.WithContext(ctx).Save(s).Error
}

func defaultSettings() BookingSettings {
	return BookingSettings{
		BookingEnabled: true,
		MaxPartySize:   8,
		MaxAdvanceDays: 30,
		AvailableTimes: []string{
			"12:00", "12:30", "13:00", "13:30", "14:00",
			"18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00",
		},
		FreeCancellationHours:       24,
		ReconfirmationDeadlineHours: 24,
		NoResponseAction:            NoResponseFlagOnly,
	}
}
