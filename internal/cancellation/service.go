package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
	"github.com/technoactive/donatheresa-website-sub002/internal/deposits"
	"github.com/technoactive/donatheresa-website-sub002/internal/settings"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"
)

var ErrAlreadyCancelled = errors.New("booking is already cancelled")

// Preview is the booking summary shown before the customer confirms a
// cancellation, including what would happen to their deposit.
type Preview struct {
	BookingReference string   `json:"booking_reference"`
	CustomerName     string   `json:"customer_name,omitempty"`
	Date             string   `json:"date"`
	Time             string   `json:"time"`
	PartySize        int      `json:"party_size"`
	Deposit          Decision `json:"deposit"`
}

// Outcome reports an executed cancellation.
type Outcome struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Deposit Decision `json:"deposit"`
}

// Service interface defines the contract for the cancellation workflow
type Service interface {
	// Preview evaluates the policy for the booking behind a cancel token
	// without changing anything.
	Preview(ctx context.Context, token string) (*Preview, error)

	// Cancel executes the cancellation for the booking behind a cancel token.
	Cancel(ctx context.Context, token string) (*Outcome, error)

	// CancelBooking cancels a booking directly, used by the expiry sweep and
	// staff tooling. performedBy is recorded against any settlement ledger
	// rows.
	CancelBooking(ctx context.Context, booking *bookings.Booking, reason, performedBy string) (*Outcome, error)
}

type service struct {
	repo       bookings.Repository
	deposits   deposits.Service
	settings   settings.Service
	cal        *clock.Calendar
	notifier   bookings.Notifier
	staffEmail string
	log        *logger.Logger
}

// NewService creates a new cancellation service instance
func NewService(repo bookings.Repository, depositService deposits.Service, settingsService settings.Service,
	cal *clock.Calendar, notifier bookings.Notifier, staffEmail string) Service {
	return &service{
		repo:       repo,
		deposits:   depositService,
		settings:   settingsService,
		cal:        cal,
		notifier:   notifier,
		staffEmail: staffEmail,
		log:        logger.GetDefault(),
	}
}

func (s *service) Preview(ctx context.Context, token string) (*Preview, error) {
	booking, err := s.repo.GetByCancelToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}

	decision, err := s.evaluate(ctx, booking)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		BookingReference: booking.BookingReference,
		Date:             booking.BookingDate,
		Time:             booking.BookingTime,
		PartySize:        booking.PartySize,
		Deposit:          decision,
	}
	if booking.Customer != nil {
		preview.CustomerName = booking.Customer.Name
	}
	return preview, nil
}

func (s *service) Cancel(ctx context.Context, token string) (*Outcome, error) {
	booking, err := s.repo.GetByCancelToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.CancelBooking(ctx, booking, "cancelled by customer", deposits.PerformedBySystem)
}

// CancelBooking cancels the booking first and settles the deposit after.
// The status flip is the durable part; settlement is best effort because the
// provider call can fail, and the authoritative deposit state arrives via
// webhook anyway.
func (s *service) CancelBooking(ctx context.Context, booking *bookings.Booking, reason, performedBy string) (*Outcome, error) {
	if booking.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}

	decision, err := s.evaluate(ctx, booking)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, booking.ID, bookings.StatusCancelled, &now); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.log.LogBookingCancelled(ctx, booking.ID.String(), booking.BookingReference, reason)

	s.settle(ctx, booking, decision, reason, performedBy)
	s.notify(ctx, booking, decision)

	return &Outcome{
		Success: true,
		Message: fmt.Sprintf("Your booking %s has been cancelled.", booking.BookingReference),
		Deposit: decision,
	}, nil
}

func (s *service) evaluate(ctx context.Context, booking *bookings.Booking) (Decision, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load booking settings: %w", err)
	}

	hoursUntil, err := s.cal.HoursUntil(booking.BookingDate, booking.BookingTime)
	if err != nil {
		return Decision{}, err
	}

	return Evaluate(booking, hoursUntil, cfg.FreeCancellationHours, cfg.LateCancelChargePercent), nil
}

// settle executes the evaluator's decision against the payment provider.
// Failures are logged and left for staff follow-up; the cancellation itself
// already stands.
func (s *service) settle(ctx context.Context, booking *bookings.Booking, decision Decision, reason, performedBy string) {
	var err error
	switch decision.Action {
	case ActionCharged:
		err = s.deposits.CaptureDeposit(ctx, booking, 0, reason, performedBy)
	case ActionPartialCharge:
		err = s.deposits.CaptureDeposit(ctx, booking, decision.ChargeAmount, reason, performedBy)
	case ActionReleased:
		err = s.deposits.ReleaseDeposit(ctx, booking, reason, performedBy)
	default:
		return
	}
	if err != nil {
		s.log.ErrorWithContext(ctx, "deposit settlement failed after cancellation", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"reference":  booking.BookingReference,
			"action":     decision.Action,
		})
	}
}

func (s *service) notify(ctx context.Context, booking *bookings.Booking, decision Decision) {
	if booking.Customer != nil && booking.Customer.HasRealEmail() {
		s.notifier.Dispatch("booking_cancelled", booking.Customer.Email, booking.Customer.Name, map[string]interface{}{
			"reference":       booking.BookingReference,
			"date":            booking.BookingDate,
			"time":            booking.BookingTime,
			"deposit_action":  decision.Action,
			"deposit_message": decision.Message,
		})
	}
	if s.staffEmail != "" {
		s.notifier.Dispatch("staff_booking_cancelled", s.staffEmail, "Staff", map[string]interface{}{
			"reference":      booking.BookingReference,
			"date":           booking.BookingDate,
			"time":           booking.BookingTime,
			"deposit_action": decision.Action,
		})
	}
}
