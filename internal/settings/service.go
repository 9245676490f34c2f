package settings

import (
	"context"
	"fmt"

	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"
)

// Service interface defines the contract for booking settings access
type Service interface {
	Get(ctx context.Context) (*BookingSettings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (*BookingSettings, error)
}

type service struct {
	repo Repository
}

// NewService creates a new settings service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context) (*BookingSettings, error) {
	return s.repo.Get(ctx)
}

// Update applies a partial settings update. Only fields present in the
// request change; the singleton row is written back whole.
func (s *service) Update(ctx context.Context, req UpdateSettingsRequest) (*BookingSettings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if req.AvailableTimes != nil {
		for _, slot := range *req.AvailableTimes {
			if _, err := clock.ParseTime(slot); err != nil {
				return nil, fmt.Errorf("invalid time slot %q: must be HH:MM", slot)
			}
		}
		current.AvailableTimes = *req.AvailableTimes
	}
	if req.ClosedDates != nil {
		for _, date := range *req.ClosedDates {
			if _, err := clock.ParseDate(date); err != nil {
				return nil, fmt.Errorf("invalid closed date %q: must be YYYY-MM-DD", date)
			}
		}
		current.ClosedDates = *req.ClosedDates
	}
	if req.ClosedDaysOfWeek != nil {
		current.ClosedDaysOfWeek = *req.ClosedDaysOfWeek
	}

	if req.BookingEnabled != nil {
		current.BookingEnabled = *req.BookingEnabled
	}
	if req.MaintenanceMode != nil {
		current.MaintenanceMode = *req.MaintenanceMode
	}
	if req.SuspensionMessage != nil {
		current.SuspensionMessage = *req.SuspensionMessage
	}
	if req.MaxPartySize != nil {
		current.MaxPartySize = *req.MaxPartySize
	}
	if req.MaxAdvanceDays != nil {
		current.MaxAdvanceDays = *req.MaxAdvanceDays
	}

	if req.DepositRequired != nil {
		current.DepositRequired = *req.DepositRequired
	}
	if req.DepositAmount != nil {
		current.DepositAmount = *req.DepositAmount
	}
	if req.FreeCancellationHours != nil {
		current.FreeCancellationHours = *req.FreeCancellationHours
	}
	if req.LateCancelChargePercent != nil {
		current.LateCancelChargePercent = *req.LateCancelChargePercent
	}

	if req.ReconfirmationEnabled != nil {
		current.ReconfirmationEnabled = *req.ReconfirmationEnabled
	}
	if req.ReconfirmationDeadlineHours != nil {
		current.ReconfirmationDeadlineHours = *req.ReconfirmationDeadlineHours
	}
	if req.NoResponseAction != nil {
		current.NoResponseAction = *req.NoResponseAction
	}

	if current.DepositRequired && current.DepositAmount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive when deposits are required")
	}

	if err := s.repo.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	return current, nil
}
