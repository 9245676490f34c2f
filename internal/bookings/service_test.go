package bookings

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/customers"
	"github.com/technoactive/donatheresa-website-sub002/internal/settings"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingRepo shares customer state with fakeCustomerRepo the way the
// real transaction persists both, so a second booking from the same phone is
// visible to the duplicate guard.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*Booking
	cust     *fakeCustomerRepo
}

func (f *fakeBookingRepo) CreateWithCustomer(ctx context.Context, customer *customers.Customer, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.cust.byPhone[customer.Phone]; ok {
		*customer = *existing
	} else {
		customer.ID = uuid.New()
		f.cust.byPhone[customer.Phone] = customer
	}
	booking.ID = uuid.New()
	booking.CustomerID = customer.ID
	booking.Customer = customer
	f.bookings = append(f.bookings, booking)
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeBookingRepo) GetByCancelToken(ctx context.Context, token string) (*Booking, error) {
	for _, b := range f.bookings {
		if b.CancelToken == token {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeBookingRepo) GetByReconfirmToken(ctx context.Context, token string) (*Booking, error) {
	for _, b := range f.bookings {
		if b.ReconfirmToken == token {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, cancelledAt *time.Time) error {
	b, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	b.Status = status
	b.CancelledAt = cancelledAt
	return nil
}

func (f *fakeBookingRepo) UpdateReconfirmationStatus(ctx context.Context, id uuid.UUID, status ReconfirmationStatus) error {
	b, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	b.ReconfirmationStatus = status
	return nil
}

func (f *fakeBookingRepo) FindActiveByCustomerAndDate(ctx context.Context, customerID uuid.UUID, date string) (*Booking, error) {
	for _, b := range f.bookings {
		if b.CustomerID == customerID && b.BookingDate == date && b.Status != StatusCancelled {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeBookingRepo) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	out := make([]Booking, 0, len(f.bookings))
	for _, b := range f.bookings {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

type fakeCustomerRepo struct {
	byPhone map[string]*customers.Customer
}

func (f *fakeCustomerRepo) GetByPhone(ctx context.Context, phone string) (*customers.Customer, error) {
	if c, ok := f.byPhone[phone]; ok {
		return c, nil
	}
	return nil, customers.ErrNotFound
}


type fakeSettingsService struct {
	settings *settings.BookingSettings
}

func (f *fakeSettingsService) Get(ctx context.Context) (*settings.BookingSettings, error) {
	return f.settings, nil
}

func (f *fakeSettingsService) Update(ctx context.Context, req settings.UpdateSettingsRequest) (*settings.BookingSettings, error) {
	return f.settings, nil
}

type dispatchedNotification struct {
	templateKey string
	recipient   string
}

type fakeNotifier struct {
	mu         sync.Mutex
	dispatched []dispatchedNotification
}

func (f *fakeNotifier) Dispatch(templateKey, recipientEmail, recipientName string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, dispatchedNotification{templateKey, recipientEmail})
}

func (f *fakeNotifier) templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.dispatched))
	for _, d := range f.dispatched {
		keys = append(keys, d.templateKey)
	}
	return keys
}

type fakeTracker struct {
	conversions int
}

func (f *fakeTracker) TrackConversion(bookingID, reference, date, timeSlot string, partySize int) {
	f.conversions++
}

type serviceFixture struct {
	service  Service
	repo     *fakeBookingRepo
	cust     *fakeCustomerRepo
	cfg      *settings.BookingSettings
	notifier *fakeNotifier
	tracker  *fakeTracker
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	cal, err := clock.NewWithNow("Europe/London", func() time.Time {
		return time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC) // Tuesday noon
	})
	require.NoError(t, err)

	cfg := &settings.BookingSettings{
		BookingEnabled:   true,
		MaxPartySize:     8,
		MaxAdvanceDays:   30,
		AvailableTimes:   []string{"19:00", "19:30"},
		ClosedDaysOfWeek: []int{1},
	}

	cust := &fakeCustomerRepo{byPhone: map[string]*customers.Customer{}}
	f := &serviceFixture{
		repo:     &fakeBookingRepo{cust: cust},
		cust:     cust,
		cfg:      cfg,
		notifier: &fakeNotifier{},
		tracker:  &fakeTracker{},
	}
	f.service = NewService(f.repo, f.cust, &fakeSettingsService{settings: cfg},
		cal, f.notifier, f.tracker, "Dona Theresa", "staff@donatheresa.co.uk")
	return f
}

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Phone:     "+44 7700 900123",
		PartySize: 4,
		Date:      "2025-03-11",
		Time:      "19:00",
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.CreateBooking(context.Background(), validRequest(), SourceWebsite)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.BookingReference, "DT-"), "reference %s", result.BookingReference)
	assert.NotEmpty(t, result.BookingID)

	require.Len(t, f.repo.bookings, 1)
	booking := f.repo.bookings[0]
	assert.Equal(t, StatusConfirmed, booking.Status)
	assert.Equal(t, "2025-03-11", booking.BookingDate)
	assert.NotEmpty(t, booking.CancelToken)
	assert.NotEmpty(t, booking.ReconfirmToken)
	assert.Equal(t, "+447700900123", booking.Customer.Phone)

	assert.ElementsMatch(t, []string{"booking_confirmed", "staff_new_booking"}, f.notifier.templates())
	assert.Equal(t, 1, f.tracker.conversions)
}

func TestCreateBookingWithoutEmailUsesPlaceholder(t *testing.T) {
	f := newServiceFixture(t)
	req := validRequest()
	req.Email = ""

	result, err := f.service.CreateBooking(context.Background(), req, SourceWebsite)
	require.NoError(t, err)
	require.True(t, result.Success)

	booking := f.repo.bookings[0]
	assert.False(t, booking.Customer.HasRealEmail())

	// No customer confirmation goes to a synthesized address.
	assert.Equal(t, []string{"staff_new_booking"}, f.notifier.templates())
}

func TestCreateBookingDuplicateGuard(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.service.CreateBooking(context.Background(), validRequest(), SourceWebsite)
	require.NoError(t, err)
	require.True(t, first.Success)

	// Same phone, same date, different slot.
	req := validRequest()
	req.Time = "19:30"
	second, err := f.service.CreateBooking(context.Background(), req, SourceWebsite)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "19:00", "rejection discloses the existing booking time")
	assert.Len(t, f.repo.bookings, 1)

	// Same phone, different date succeeds.
	req = validRequest()
	req.Date = "2025-03-12"
	third, err := f.service.CreateBooking(context.Background(), req, SourceWebsite)
	require.NoError(t, err)
	assert.True(t, third.Success)
	assert.Len(t, f.repo.bookings, 2)
}

func TestCreateBookingCancelledBookingDoesNotBlock(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.service.CreateBooking(context.Background(), validRequest(), SourceWebsite)
	require.NoError(t, err)
	require.True(t, first.Success)

	f.repo.bookings[0].Status = StatusCancelled

	second, err := f.service.CreateBooking(context.Background(), validRequest(), SourceWebsite)
	require.NoError(t, err)
	assert.True(t, second.Success, "a cancelled booking frees the date")
}

func TestCreateBookingPolicyRejection(t *testing.T) {
	f := newServiceFixture(t)
	req := validRequest()
	req.PartySize = 20

	result, err := f.service.CreateBooking(context.Background(), req, SourceWebsite)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, f.repo.bookings, "rejected requests persist nothing")
	assert.Empty(t, f.notifier.templates())
	assert.Zero(t, f.tracker.conversions)
}

func TestCreateBookingInvalidDateFormat(t *testing.T) {
	f := newServiceFixture(t)
	req := validRequest()
	req.Date = "11/03/2025"

	result, err := f.service.CreateBooking(context.Background(), req, SourceWebsite)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestCreateBookingStampsDepositFields(t *testing.T) {
	f := newServiceFixture(t)
	f.cfg.DepositRequired = true
	f.cfg.DepositAmount = 5000

	result, err := f.service.CreateBooking(context.Background(), validRequest(), SourceWebsite)
	require.NoError(t, err)
	require.True(t, result.Success)

	booking := f.repo.bookings[0]
	assert.True(t, booking.DepositRequired)
	require.NotNil(t, booking.DepositAmount)
	assert.Equal(t, int64(5000), *booking.DepositAmount)
	assert.Equal(t, DepositNone, booking.DepositStatus)
}

func TestCreateBookingStampsReconfirmation(t *testing.T) {
	f := newServiceFixture(t)
	f.cfg.ReconfirmationEnabled = true
	f.cfg.ReconfirmationDeadlineHours = 24

	result, err := f.service.CreateBooking(context.Background(), validRequest(), SourceWebsite)
	require.NoError(t, err)
	require.True(t, result.Success)

	booking := f.repo.bookings[0]
	assert.Equal(t, ReconfirmPending, booking.ReconfirmationStatus)
	require.NotNil(t, booking.ReconfirmationDeadline)

	// Deadline is 24h before the booking instant (2025-03-11 19:00 London).
	expected := time.Date(2025, 3, 10, 19, 0, 0, 0, booking.ReconfirmationDeadline.Location())
	assert.True(t, booking.ReconfirmationDeadline.Equal(expected),
		"deadline %s", booking.ReconfirmationDeadline)
}

func TestCreateBookingSkipsReconfirmationInsideWindow(t *testing.T) {
	f := newServiceFixture(t)
	f.cfg.ReconfirmationEnabled = true
	f.cfg.ReconfirmationDeadlineHours = 48

	// Wednesday 19:00 minus 48h is Monday 19:00, already behind the fixed
	// Tuesday-noon clock, so no reconfirmation is requested.
	req := validRequest()
	req.Date = "2025-03-05"

	result, err := f.service.CreateBooking(context.Background(), req, SourceWebsite)
	require.NoError(t, err)
	require.True(t, result.Success)

	booking := f.repo.bookings[0]
	assert.NotEqual(t, ReconfirmPending, booking.ReconfirmationStatus)
	assert.Nil(t, booking.ReconfirmationDeadline)
}
