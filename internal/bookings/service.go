package bookings

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/customers"
	"github.com/technoactive/donatheresa-website-sub002/internal/settings"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"

	"github.com/google/uuid"
)

// Notifier dispatches a best-effort notification (template key + structured
// data). Implementations never block the caller and never return an error;
// delivery failures are logged and retried downstream.
type Notifier interface {
	Dispatch(templateKey, recipientEmail, recipientName string, data map[string]interface{})
}

// ConversionTracker emits a best-effort analytics conversion event.
type ConversionTracker interface {
	TrackConversion(bookingID, reference, date, timeSlot string, partySize int)
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest, source string) (*BookingResult, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
}

// service implements the Service interface
type service struct {
	repo          Repository
	customerRepo  customers.Repository
	settings      settings.Service
	cal           *clock.Calendar
	notifier      Notifier
	tracker       ConversionTracker
	staffEmail    string
	restaurant    string
	log           *logger.Logger
}

// NewService creates a new booking service instance
func NewService(repo Repository, customerRepo customers.Repository, settingsService settings.Service,
	cal *clock.Calendar, notifier Notifier, tracker ConversionTracker,
	restaurantName, staffEmail string) Service {
	return &service{
		repo:         repo,
		customerRepo: customerRepo,
		settings:     settingsService,
		cal:          cal,
		notifier:     notifier,
		tracker:      tracker,
		staffEmail:   staffEmail,
		restaurant:   restaurantName,
		log:          logger.GetDefault(),
	}
}

// CreateBooking runs the admission workflow. Policy rejections come back as
// a structured result; only unexpected failures (settings fetch, persistence)
// return an error, which the controller translates to a generic message.
//
// The transactional insert is the single commit point: nothing before it has
// side effects, and nothing after it (notifications, analytics) may roll it
// back.
func (s *service) CreateBooking(ctx context.Context, req CreateBookingRequest, source string) (*BookingResult, error) {
	if _, err := clock.ParseDate(req.Date); err != nil {
		return &BookingResult{Success: false, Message: "Please provide a valid booking date."}, nil
	}
	if _, err := clock.ParseTime(req.Time); err != nil {
		return &BookingResult{Success: false, Message: "Please provide a valid booking time."}, nil
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking settings: %w", err)
	}

	rejection, err := EvaluateAvailability(cfg, s.cal, req.Date, req.Time, req.PartySize)
	if err != nil {
		return nil, fmt.Errorf("availability evaluation failed: %w", err)
	}
	if rejection != nil {
		return &BookingResult{Success: false, Message: rejection.Reason}, nil
	}

	phone := customers.NormalizePhone(req.Phone)

	// Duplicate guard: one non-cancelled booking per phone per date. Best
	// effort, not a uniqueness constraint; concurrent first-time submissions
	// can race past it.
	if existing, err := s.customerRepo.GetByPhone(ctx, phone); err == nil {
		dup, err := s.repo.FindActiveByCustomerAndDate(ctx, existing.ID, req.Date)
		if err == nil {
			return &BookingResult{
				Success: false,
				Message: fmt.Sprintf("You already have a booking at %s on this date. Please call us if you need to change it.", dup.BookingTime),
			}, nil
		}
		if err != ErrNotFound {
			return nil, fmt.Errorf("duplicate guard lookup failed: %w", err)
		}
	} else if err != customers.ErrNotFound {
		return nil, fmt.Errorf("customer lookup failed: %w", err)
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = customers.PlaceholderEmail(phone)
	}

	customer := &customers.Customer{
		Name:  strings.TrimSpace(req.Name),
		Phone: phone,
		Email: email,
	}

	reference, err := s.generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		BookingDate:      req.Date,
		BookingTime:      req.Time,
		PartySize:        req.PartySize,
		Status:           StatusConfirmed,
		SpecialRequests:  strings.TrimSpace(req.Notes),
		BookingReference: reference,
		Source:           source,
		DepositStatus:    DepositNone,
		CancelToken:      newOpaqueToken(),
		ReconfirmToken:   newOpaqueToken(),
	}

	if cfg.DepositRequired && cfg.DepositAmount > 0 {
		amount := cfg.DepositAmount
		booking.DepositRequired = true
		booking.DepositAmount = &amount
	}

	s.applyReconfirmationPolicy(booking, cfg)

	// Single commit point.
	if err := s.repo.CreateWithCustomer(ctx, customer, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), reference, req.Date, req.Time, req.PartySize)

	// Best-effort side effects; failures never surface to the caller.
	if customer.HasRealEmail() {
		s.notifier.Dispatch("booking_confirmed", customer.Email, customer.Name, map[string]interface{}{
			"reference":    reference,
			"date":         req.Date,
			"time":         req.Time,
			"party_size":   req.PartySize,
			"restaurant":   s.restaurant,
			"cancel_token": booking.CancelToken,
		})
	}
	if s.staffEmail != "" {
		s.notifier.Dispatch("staff_new_booking", s.staffEmail, "Staff", map[string]interface{}{
			"reference":  reference,
			"name":       customer.Name,
			"phone":      customer.Phone,
			"date":       req.Date,
			"time":       req.Time,
			"party_size": req.PartySize,
		})
	}

	s.tracker.TrackConversion(booking.ID.String(), reference, req.Date, req.Time, req.PartySize)

	return &BookingResult{
		Success:          true,
		BookingID:        booking.ID.String(),
		BookingReference: reference,
		Message:          fmt.Sprintf("Your table at %s is booked for %s at %s. Your reference is %s.", s.restaurant, req.Date, req.Time, reference),
	}, nil
}

// applyReconfirmationPolicy stamps the reconfirmation fields when the policy
// is active and the deadline would still be in the future; bookings inside
// the deadline window skip reconfirmation entirely.
func (s *service) applyReconfirmationPolicy(booking *Booking, cfg *settings.BookingSettings) {
	if !cfg.ReconfirmationEnabled {
		return
	}
	at, err := s.cal.CombineDateTime(booking.BookingDate, booking.BookingTime)
	if err != nil {
		return
	}
	deadline := at.Add(-time.Duration(cfg.ReconfirmationDeadlineHours) * time.Hour)
	if deadline.Before(s.cal.Now()) {
		return
	}
	booking.ReconfirmationStatus = ReconfirmPending
	booking.ReconfirmationDeadline = &deadline
}

// GetBooking retrieves a booking by ID
func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// ListBookings retrieves bookings for the staff dashboard
func (s *service) ListBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.List(ctx, query)
}

// generateBookingReference generates a short human-facing booking code
func (s *service) generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)

	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("DT-%s-%s", timestamp, string(randomPart)), nil
}

// newOpaqueToken generates a capability token for the public self-service links
func newOpaqueToken() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}
