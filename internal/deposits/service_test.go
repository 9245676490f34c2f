package deposits

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDepositRepo struct {
	store  map[uuid.UUID]*bookings.Booking
	ledger []DepositTransaction
	seen   map[string]bool

	// failTransition makes the next RecordTransition fail atomically, the
	// way a rolled-back transaction leaves no ledger row behind.
	failTransition error
}

func newFakeDepositRepo() *fakeDepositRepo {
	return &fakeDepositRepo{
		store: map[uuid.UUID]*bookings.Booking{},
		seen:  map[string]bool{},
	}
}

func (f *fakeDepositRepo) RecordTransition(ctx context.Context, txn *DepositTransaction, bookingID uuid.UUID, updates map[string]interface{}) (bool, error) {
	key := txn.ProviderEventID + "|" + txn.Action
	if f.seen[key] {
		return true, nil
	}
	if f.failTransition != nil {
		err := f.failTransition
		f.failTransition = nil
		return false, err
	}
	if err := f.UpdateDepositFields(ctx, bookingID, updates); err != nil {
		return false, err
	}
	f.seen[key] = true
	f.ledger = append(f.ledger, *txn)
	return false, nil
}

func (f *fakeDepositRepo) FindBookingByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	if b, ok := f.store[id]; ok {
		return b, nil
	}
	return nil, ErrBookingNotFound
}

func (f *fakeDepositRepo) FindBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*bookings.Booking, error) {
	for _, b := range f.store {
		if b.PaymentIntentID != nil && *b.PaymentIntentID == paymentIntentID {
			return b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (f *fakeDepositRepo) FindBookingByReference(ctx context.Context, reference string) (*bookings.Booking, error) {
	for _, b := range f.store {
		if b.BookingReference == reference {
			return b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (f *fakeDepositRepo) UpdateDepositFields(ctx context.Context, bookingID uuid.UUID, updates map[string]interface{}) error {
	b, ok := f.store[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	for k, v := range updates {
		switch k {
		case "deposit_status":
			b.DepositStatus = v.(bookings.DepositStatus)
		case "payment_intent_id":
			id := v.(string)
			b.PaymentIntentID = &id
		case "deposit_required":
			b.DepositRequired = v.(bool)
		case "deposit_captured_at":
			at := v.(time.Time)
			b.DepositCapturedAt = &at
		case "deposit_refund_amount":
			amount := v.(int64)
			b.DepositRefundAmount = &amount
		case "deposit_refunded_at":
			at := v.(time.Time)
			b.DepositRefundedAt = &at
		}
	}
	return nil
}

func (f *fakeDepositRepo) ListTransactions(ctx context.Context, bookingID uuid.UUID) ([]DepositTransaction, error) {
	var out []DepositTransaction
	for _, txn := range f.ledger {
		if txn.BookingID != nil && *txn.BookingID == bookingID {
			out = append(out, txn)
		}
	}
	return out, nil
}

type fakeProvider struct {
	created   int
	captured  []int64
	cancelled []string
	refunded  []int64
	intent    *PaymentIntent
}

func (f *fakeProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency, bookingID, reference string) (*PaymentIntent, error) {
	f.created++
	return &PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", f.created),
		Status:       "requires_payment_method",
		Amount:       amount,
		ClientSecret: "pi_secret",
	}, nil
}

func (f *fakeProvider) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	if f.intent != nil {
		return f.intent, nil
	}
	return &PaymentIntent{ID: id, Status: "requires_payment_method", ClientSecret: "pi_secret"}, nil
}

func (f *fakeProvider) CapturePaymentIntent(ctx context.Context, id string, amountToCapture int64) (*PaymentIntent, error) {
	f.captured = append(f.captured, amountToCapture)
	return &PaymentIntent{ID: id, Status: "succeeded"}, nil
}

func (f *fakeProvider) CancelPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	f.cancelled = append(f.cancelled, id)
	return &PaymentIntent{ID: id, Status: "canceled"}, nil
}

func (f *fakeProvider) CreateRefund(ctx context.Context, paymentIntentID string, amount int64) error {
	f.refunded = append(f.refunded, amount)
	return nil
}

func seedBooking(repo *fakeDepositRepo, depositAmount int64, status bookings.DepositStatus, intentID string) *bookings.Booking {
	b := &bookings.Booking{
		ID:               uuid.New(),
		BookingReference: "DT-20250311-ABCDEF",
		DepositRequired:  true,
		DepositAmount:    &depositAmount,
		DepositStatus:    status,
	}
	if intentID != "" {
		b.PaymentIntentID = &intentID
	}
	repo.store[b.ID] = b
	return b
}

func intentEvent(eventID, eventType, intentID string, booking *bookings.Booking, extra string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": %q,
		"data": {"object": {
			"id": %q,
			"amount": 5000,
			"metadata": {"booking_id": %q}%s
		}}
	}`, eventID, eventType, intentID, booking.ID.String(), extra))
}

func TestProcessEventAuthorizationIsIdempotent(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositNone, "")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := intentEvent("evt_1", "payment_intent.amount_capturable_updated", "pi_1", booking,
		`, "amount_capturable": 5000`)

	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositAuthorized, booking.DepositStatus)
	require.NotNil(t, booking.PaymentIntentID)
	assert.Equal(t, "pi_1", *booking.PaymentIntentID)
	assert.Len(t, repo.ledger, 1)

	// Redelivery: same final state, still exactly one ledger row.
	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositAuthorized, booking.DepositStatus)
	assert.Len(t, repo.ledger, 1)
}

func TestProcessEventSucceededAfterCaptureStaysCaptured(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositCaptured, "pi_1")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	// Manual-capture intents only succeed once captured, so a delivery that
	// trails charge.captured must not walk the status backwards.
	payload := intentEvent("evt_late", "payment_intent.succeeded", "pi_1", booking,
		`, "capture_method": "manual", "amount_received": 5000`)

	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositCaptured, booking.DepositStatus)

	require.Len(t, repo.ledger, 1)
	assert.Equal(t, ActionCaptured, repo.ledger[0].Action)
}

func TestProcessEventSucceededManualStillHeld(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositNone, "")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := intentEvent("evt_held", "payment_intent.succeeded", "pi_1", booking,
		`, "capture_method": "manual", "amount_received": 0`)

	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositAuthorized, booking.DepositStatus)
}

func TestProcessEventRetryAfterFailedDelivery(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositNone, "")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := intentEvent("evt_retry", "payment_intent.amount_capturable_updated", "pi_1", booking,
		`, "amount_capturable": 5000`)

	// A delivery that fails mid-transition leaves no ledger row, so the
	// provider's retry is processed fresh rather than acked as a replay.
	repo.failTransition = errors.New("connection reset")
	require.Error(t, svc.ProcessEvent(context.Background(), payload))
	assert.Empty(t, repo.ledger)
	assert.Equal(t, bookings.DepositNone, booking.DepositStatus)

	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositAuthorized, booking.DepositStatus)
	assert.Len(t, repo.ledger, 1)
}

func TestProcessEventPaymentFailedClearsRequirement(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositNone, "")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := intentEvent("evt_2", "payment_intent.payment_failed", "pi_1", booking,
		`, "last_payment_error": {"code": "card_declined", "message": "Your card was declined."}`)

	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositFailed, booking.DepositStatus)
	assert.False(t, booking.DepositRequired, "failed attempt clears the requirement")

	require.Len(t, repo.ledger, 1)
	assert.Equal(t, ActionFailed, repo.ledger[0].Action)
	assert.Equal(t, "Your card was declined.", repo.ledger[0].Reason)
}

func TestProcessEventIntentCanceled(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositAuthorized, "pi_1")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := intentEvent("evt_3", "payment_intent.canceled", "pi_1", booking, "")

	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositCancelled, booking.DepositStatus)
}

func TestProcessEventChargeCaptured(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositAuthorized, "pi_1")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := []byte(`{
		"id": "evt_4",
		"type": "charge.captured",
		"data": {"object": {
			"id": "ch_1", "payment_intent": "pi_1",
			"amount": 5000, "amount_captured": 5000, "captured": true
		}}
	}`)

	require.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Equal(t, bookings.DepositCaptured, booking.DepositStatus)
	assert.NotNil(t, booking.DepositCapturedAt)
}

func TestProcessEventChargeRefunded(t *testing.T) {
	tests := []struct {
		name       string
		refunded   int64
		wantStatus bookings.DepositStatus
		wantAction string
	}{
		{"full refund", 5000, bookings.DepositRefunded, ActionRefunded},
		{"partial refund", 2500, bookings.DepositPartiallyRefunded, ActionPartialRefund},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeDepositRepo()
			booking := seedBooking(repo, 5000, bookings.DepositCaptured, "pi_1")
			svc := NewService(repo, &fakeProvider{}, "gbp")

			payload := []byte(fmt.Sprintf(`{
				"id": "evt_5",
				"type": "charge.refunded",
				"data": {"object": {
					"id": "ch_1", "payment_intent": "pi_1",
					"amount": 5000, "amount_refunded": %d, "refunded": true
				}}
			}`, tt.refunded))

			require.NoError(t, svc.ProcessEvent(context.Background(), payload))
			assert.Equal(t, tt.wantStatus, booking.DepositStatus)
			require.NotNil(t, booking.DepositRefundAmount)
			assert.Equal(t, tt.refunded, *booking.DepositRefundAmount)
			assert.NotNil(t, booking.DepositRefundedAt)
			require.Len(t, repo.ledger, 1)
			assert.Equal(t, tt.wantAction, repo.ledger[0].Action)
		})
	}
}

func TestProcessEventUnrecognizedTypeIsAcknowledged(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := []byte(`{"id": "evt_6", "type": "customer.created", "data": {"object": {}}}`)

	assert.NoError(t, svc.ProcessEvent(context.Background(), payload))
	assert.Empty(t, repo.ledger)
}

func TestProcessEventOrphanIntentIsAcknowledged(t *testing.T) {
	repo := newFakeDepositRepo()
	svc := NewService(repo, &fakeProvider{}, "gbp")

	payload := []byte(`{
		"id": "evt_7",
		"type": "payment_intent.canceled",
		"data": {"object": {"id": "pi_unknown", "metadata": {}}}
	}`)

	assert.NoError(t, svc.ProcessEvent(context.Background(), payload),
		"events for unknown bookings must not trigger provider retries")
	assert.Empty(t, repo.ledger)
}

func TestProcessEventMalformedPayload(t *testing.T) {
	svc := NewService(newFakeDepositRepo(), &fakeProvider{}, "gbp")
	assert.Error(t, svc.ProcessEvent(context.Background(), []byte("not json")))
}

func TestEnsureDepositIntentCreatesOnce(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositNone, "")
	provider := &fakeProvider{}
	svc := NewService(repo, provider, "gbp")

	pi, err := svc.EnsureDepositIntent(context.Background(), booking.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.created)
	assert.NotEmpty(t, pi.ClientSecret)
	require.NotNil(t, booking.PaymentIntentID)

	// Second call reuses the stored intent.
	_, err = svc.EnsureDepositIntent(context.Background(), booking.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.created)
}

func TestEnsureDepositIntentNoDepositDue(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositNone, "")
	booking.DepositRequired = false
	svc := NewService(repo, &fakeProvider{}, "gbp")

	_, err := svc.EnsureDepositIntent(context.Background(), booking.BookingReference)
	assert.ErrorIs(t, err, ErrNoDepositDue)
}

func TestCaptureDepositPartialAmount(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositAuthorized, "pi_1")
	provider := &fakeProvider{}
	svc := NewService(repo, provider, "gbp")

	require.NoError(t, svc.CaptureDeposit(context.Background(), booking, 2500, "late cancellation", PerformedBySystem))
	assert.Equal(t, []int64{2500}, provider.captured)
	assert.Equal(t, bookings.DepositCaptured, booking.DepositStatus)

	require.Len(t, repo.ledger, 1)
	assert.Equal(t, PerformedBySystem, repo.ledger[0].PerformedBy)
	assert.Equal(t, int64(2500), repo.ledger[0].Amount)
}

func TestCaptureDepositRequiresAuthorizedStatus(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositCaptured, "pi_1")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	err := svc.CaptureDeposit(context.Background(), booking, 0, "late cancellation", PerformedBySystem)
	assert.Error(t, err)
}

func TestReleaseDeposit(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositAuthorized, "pi_1")
	provider := &fakeProvider{}
	svc := NewService(repo, provider, "gbp")

	require.NoError(t, svc.ReleaseDeposit(context.Background(), booking, "free cancellation", PerformedBySystem))
	assert.Equal(t, []string{"pi_1"}, provider.cancelled)
	assert.Equal(t, bookings.DepositCancelled, booking.DepositStatus)
}

func TestRefundDeposit(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		wantRefund int64
		wantStatus bookings.DepositStatus
		wantAction string
	}{
		{"full refund by default", 0, 5000, bookings.DepositRefunded, ActionRefunded},
		{"partial refund", 2000, 2000, bookings.DepositPartiallyRefunded, ActionPartialRefund},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeDepositRepo()
			booking := seedBooking(repo, 5000, bookings.DepositCaptured, "pi_1")
			provider := &fakeProvider{}
			svc := NewService(repo, provider, "gbp")

			require.NoError(t, svc.RefundDeposit(context.Background(), booking.ID, tt.amount, "goodwill"))
			assert.Equal(t, []int64{tt.amount}, provider.refunded)
			assert.Equal(t, tt.wantStatus, booking.DepositStatus)
			require.NotNil(t, booking.DepositRefundAmount)
			assert.Equal(t, tt.wantRefund, *booking.DepositRefundAmount)

			require.Len(t, repo.ledger, 1)
			assert.Equal(t, tt.wantAction, repo.ledger[0].Action)
			assert.Equal(t, PerformedByStaff, repo.ledger[0].PerformedBy)
		})
	}
}

func TestRefundDepositRequiresCapturedStatus(t *testing.T) {
	repo := newFakeDepositRepo()
	booking := seedBooking(repo, 5000, bookings.DepositAuthorized, "pi_1")
	svc := NewService(repo, &fakeProvider{}, "gbp")

	err := svc.RefundDeposit(context.Background(), booking.ID, 0, "goodwill")
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestTransactionsUnknownBooking(t *testing.T) {
	svc := NewService(newFakeDepositRepo(), &fakeProvider{}, "gbp")

	_, err := svc.Transactions(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
