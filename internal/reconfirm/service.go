package reconfirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
	"github.com/technoactive/donatheresa-website-sub002/internal/cancellation"
	"github.com/technoactive/donatheresa-website-sub002/internal/deposits"
	"github.com/technoactive/donatheresa-website-sub002/internal/settings"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"
)

var ErrBookingCancelled = errors.New("booking is already cancelled")

// secondReminderWindow is the follow-up deadline granted when the
// no-response policy sends a second reminder.
const secondReminderWindow = 12 * time.Hour

// Canceller executes a booking cancellation including deposit settlement.
// cancellation.Service satisfies it.
type Canceller interface {
	CancelBooking(ctx context.Context, booking *bookings.Booking, reason, performedBy string) (*cancellation.Outcome, error)
}

// Service interface defines the contract for the reconfirmation workflow
type Service interface {
	// Summary returns the booking behind a reconfirmation token.
	Summary(ctx context.Context, token string) (*BookingSummary, error)

	// Apply records the customer's confirm-or-cancel response.
	Apply(ctx context.Context, token, action string) (string, error)

	// Sweep processes all bookings whose reconfirmation deadline has expired
	// without a response. Idempotent per run; per-booking failures are
	// collected, never fatal.
	Sweep(ctx context.Context) (*SweepResult, error)

	// Notifications returns the most recent internal notifications for the
	// staff dashboard inbox.
	Notifications(ctx context.Context, limit int) ([]InternalNotification, error)
}

type service struct {
	repo        Repository
	bookingRepo bookings.Repository
	settings    settings.Service
	cal         *clock.Calendar
	canceller   Canceller
	notifier    bookings.Notifier
	staffEmail  string
	log         *logger.Logger
}

// NewService creates a new reconfirmation service instance
func NewService(repo Repository, bookingRepo bookings.Repository, settingsService settings.Service,
	cal *clock.Calendar, canceller Canceller, notifier bookings.Notifier, staffEmail string) Service {
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		settings:    settingsService,
		cal:         cal,
		canceller:   canceller,
		notifier:    notifier,
		staffEmail:  staffEmail,
		log:         logger.GetDefault(),
	}
}

func (s *service) Summary(ctx context.Context, token string) (*BookingSummary, error) {
	booking, err := s.bookingRepo.GetByReconfirmToken(ctx, token)
	if err != nil {
		return nil, err
	}

	summary := &BookingSummary{
		BookingReference:     booking.BookingReference,
		Date:                 booking.BookingDate,
		Time:                 booking.BookingTime,
		PartySize:            booking.PartySize,
		ReconfirmationStatus: string(booking.ReconfirmationStatus),
	}
	if booking.Customer != nil {
		summary.CustomerName = booking.Customer.Name
	}
	return summary, nil
}

func (s *service) Apply(ctx context.Context, token, action string) (string, error) {
	booking, err := s.bookingRepo.GetByReconfirmToken(ctx, token)
	if err != nil {
		return "", err
	}
	if booking.IsCancelled() {
		return "", ErrBookingCancelled
	}

	switch action {
	case "confirm":
		if err := s.bookingRepo.UpdateReconfirmationStatus(ctx, booking.ID, bookings.ReconfirmConfirmed); err != nil {
			return "", fmt.Errorf("failed to confirm booking: %w", err)
		}
		return fmt.Sprintf("Thank you, your booking %s is confirmed. We look forward to seeing you.", booking.BookingReference), nil
	case "cancel":
		outcome, err := s.canceller.CancelBooking(ctx, booking, "cancelled via reconfirmation link", deposits.PerformedBySystem)
		if err != nil {
			return "", err
		}
		return outcome.Message, nil
	default:
		return "", fmt.Errorf("unknown reconfirmation action %q", action)
	}
}

// Sweep applies the configured no-response policy to every expired pending
// booking. Flipping reconfirmation_status off pending is what makes repeat
// runs process zero additional rows.
func (s *service) Sweep(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking settings: %w", err)
	}
	if !cfg.ReconfirmationEnabled {
		return result, nil
	}

	expired, err := s.repo.ListExpiredPending(ctx, s.cal.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query expired reconfirmations: %w", err)
	}

	for i := range expired {
		booking := &expired[i]
		if err := s.processExpired(ctx, booking, cfg.NoResponseAction, result); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %v", booking.BookingReference, err))
		}
	}

	s.log.LogSweepResult(ctx, result.AutoCancelled, result.Flagged, result.Reminded, len(result.Errors))
	return result, nil
}

func (s *service) processExpired(ctx context.Context, booking *bookings.Booking, action string, result *SweepResult) error {
	switch action {
	case settings.NoResponseAutoCancel:
		return s.autoCancel(ctx, booking, result)
	case settings.NoResponseFlagOnly:
		return s.flagOnly(ctx, booking, result)
	case settings.NoResponseSecondReminder:
		return s.secondReminder(ctx, booking, result)
	default:
		return fmt.Errorf("unknown no-response action %q", action)
	}
}

func (s *service) autoCancel(ctx context.Context, booking *bookings.Booking, result *SweepResult) error {
	// Mark expired before cancelling so a concurrent or repeated run skips
	// this row even if the cancellation below fails midway.
	if err := s.bookingRepo.UpdateReconfirmationStatus(ctx, booking.ID, bookings.ReconfirmExpired); err != nil {
		return err
	}

	if _, err := s.canceller.CancelBooking(ctx, booking, "no response to reconfirmation request", deposits.PerformedBySystem); err != nil {
		return err
	}

	if err := s.repo.AppendInternalNotification(ctx, &InternalNotification{
		BookingID: booking.ID,
		Kind:      KindAutoCancelled,
		Message:   fmt.Sprintf("Booking %s was automatically cancelled after the reconfirmation deadline passed.", booking.BookingReference),
	}); err != nil {
		return err
	}

	s.alertStaff(booking, "staff_reconfirmation_auto_cancelled")
	result.AutoCancelled++
	return nil
}

func (s *service) flagOnly(ctx context.Context, booking *bookings.Booking, result *SweepResult) error {
	if err := s.bookingRepo.UpdateReconfirmationStatus(ctx, booking.ID, bookings.ReconfirmExpired); err != nil {
		return err
	}

	if err := s.repo.AppendInternalNotification(ctx, &InternalNotification{
		BookingID:      booking.ID,
		Kind:           KindNeedsFollowUp,
		Message:        fmt.Sprintf("Booking %s did not respond to the reconfirmation request. Please follow up by phone.", booking.BookingReference),
		RequiresAction: true,
	}); err != nil {
		return err
	}

	s.alertStaff(booking, "staff_reconfirmation_follow_up")
	result.Flagged++
	return nil
}

func (s *service) secondReminder(ctx context.Context, booking *bookings.Booking, result *SweepResult) error {
	// The booking stays pending; the extended deadline lets the sweep pick
	// it up again if the second reminder also goes unanswered.
	if err := s.repo.ExtendDeadline(ctx, booking.ID, s.cal.Now().Add(secondReminderWindow)); err != nil {
		return err
	}

	if booking.Customer != nil && booking.Customer.HasRealEmail() {
		s.notifier.Dispatch("reconfirmation_second_reminder", booking.Customer.Email, booking.Customer.Name, map[string]interface{}{
			"reference":       booking.BookingReference,
			"date":            booking.BookingDate,
			"time":            booking.BookingTime,
			"reconfirm_token": booking.ReconfirmToken,
			"deadline_hours":  int(secondReminderWindow.Hours()),
		})
	}

	if err := s.repo.AppendInternalNotification(ctx, &InternalNotification{
		BookingID: booking.ID,
		Kind:      KindSecondReminder,
		Message:   fmt.Sprintf("A second reconfirmation reminder was sent for booking %s.", booking.BookingReference),
	}); err != nil {
		return err
	}

	result.Reminded++
	return nil
}

func (s *service) Notifications(ctx context.Context, limit int) ([]InternalNotification, error) {
	return s.repo.ListInternalNotifications(ctx, limit)
}

func (s *service) alertStaff(booking *bookings.Booking, templateKey string) {
	if s.staffEmail == "" {
		return
	}
	s.notifier.Dispatch(templateKey, s.staffEmail, "Staff", map[string]interface{}{
		"reference":  booking.BookingReference,
		"date":       booking.BookingDate,
		"time":       booking.BookingTime,
		"party_size": booking.PartySize,
	})
}
