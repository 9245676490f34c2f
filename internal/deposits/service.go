package deposits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrNoDepositDue  = errors.New("no deposit is due for this booking")
	ErrNotRefundable = errors.New("deposit has not been captured")
)

// ProviderClient is the payment provider API surface the service needs.
// *Client satisfies it; tests substitute a fake.
type ProviderClient interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency, bookingID, reference string) (*PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	CapturePaymentIntent(ctx context.Context, id string, amountToCapture int64) (*PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amount int64) error
}

// Service interface defines the contract for deposit lifecycle logic
type Service interface {
	// ProcessEvent applies one verified provider event to the deposit state
	// machine. Unrecognized event types are acknowledged without mutation.
	ProcessEvent(ctx context.Context, payload []byte) error

	// EnsureDepositIntent returns the booking's open payment intent, creating
	// one when none exists yet.
	EnsureDepositIntent(ctx context.Context, reference string) (*PaymentIntent, error)

	// Settlement operations invoked by the cancellation workflow.
	CaptureDeposit(ctx context.Context, booking *bookings.Booking, amount int64, reason, performedBy string) error
	ReleaseDeposit(ctx context.Context, booking *bookings.Booking, reason, performedBy string) error

	// Staff dashboard operations.
	RefundDeposit(ctx context.Context, bookingID uuid.UUID, amount int64, reason string) error
	Transactions(ctx context.Context, bookingID uuid.UUID) ([]DepositTransaction, error)
}

type service struct {
	repo     Repository
	client   ProviderClient
	currency string
	log      *logger.Logger
}

// NewService creates a new deposit service instance
func NewService(repo Repository, client ProviderClient, currency string) Service {
	return &service{
		repo:     repo,
		client:   client,
		currency: currency,
		log:      logger.GetDefault(),
	}
}

// ProcessEvent dispatches a provider event to its transition handler. Every
// state-changing branch sets absolute column values, so redelivered events
// converge on the same booking state; the ledger's event-id dedup keeps the
// audit trail 1:1 with real payment events.
func (s *service) ProcessEvent(ctx context.Context, payload []byte) error {
	var ev providerEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("malformed provider event: %w", err)
	}

	switch ev.Type {
	case "payment_intent.amount_capturable_updated":
		return s.handleAuthorized(ctx, ev)
	case "payment_intent.succeeded":
		return s.handleIntentSucceeded(ctx, ev)
	case "payment_intent.payment_failed":
		return s.handlePaymentFailed(ctx, ev)
	case "payment_intent.canceled":
		return s.handleIntentCanceled(ctx, ev)
	case "charge.captured":
		return s.handleChargeCaptured(ctx, ev)
	case "charge.refunded":
		return s.handleChargeRefunded(ctx, ev)
	case "charge.dispute.created":
		return s.handleDisputeCreated(ctx, ev)
	default:
		// Acknowledge so the provider does not retry indefinitely.
		s.log.InfoWithContext(ctx, "ignoring unhandled provider event", map[string]interface{}{
			"event_id":   ev.ID,
			"event_type": ev.Type,
		})
		return nil
	}
}

// handleAuthorized processes a manual-capture authorization: the deposit is
// now held on the customer's card.
func (s *service) handleAuthorized(ctx context.Context, ev providerEvent) error {
	pi, err := decodeIntent(ev)
	if err != nil {
		return err
	}
	if pi.AmountCapturable <= 0 {
		return nil
	}

	booking, err := s.findBookingForIntent(ctx, pi)
	if err != nil {
		return s.ackOrphan(ctx, ev, pi.ID, err)
	}

	return s.applyTransition(ctx, booking, ev, pi.ID, bookings.DepositAuthorized,
		ActionAuthorized, pi.AmountCapturable, "", nil)
}

// handleIntentSucceeded processes the terminal success of an intent. In
// auto-capture mode this is the charge landing. In manual mode the event only
// fires once the hold is captured, so any received amount means captured;
// treating it as an authorization would walk a captured deposit backwards
// when this delivery trails charge.captured.
func (s *service) handleIntentSucceeded(ctx context.Context, ev providerEvent) error {
	pi, err := decodeIntent(ev)
	if err != nil {
		return err
	}

	booking, err := s.findBookingForIntent(ctx, pi)
	if err != nil {
		return s.ackOrphan(ctx, ev, pi.ID, err)
	}

	if pi.CaptureMethod == "automatic" || pi.AmountReceived > 0 {
		amount := pi.AmountReceived
		if amount == 0 {
			amount = pi.Amount
		}
		now := time.Now()
		return s.applyTransition(ctx, booking, ev, pi.ID, bookings.DepositCaptured,
			ActionCaptured, amount, "", map[string]interface{}{
				"deposit_captured_at": now,
			})
	}
	return s.applyTransition(ctx, booking, ev, pi.ID, bookings.DepositAuthorized,
		ActionAuthorized, pi.Amount, "", nil)
}

// handlePaymentFailed marks the attempt as definitively failed and clears the
// deposit requirement; the booking stands without one.
func (s *service) handlePaymentFailed(ctx context.Context, ev providerEvent) error {
	pi, err := decodeIntent(ev)
	if err != nil {
		return err
	}

	booking, err := s.findBookingForIntent(ctx, pi)
	if err != nil {
		return s.ackOrphan(ctx, ev, pi.ID, err)
	}

	reason := "payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Message != "" {
		reason = pi.LastPaymentError.Message
	}

	return s.applyTransition(ctx, booking, ev, pi.ID, bookings.DepositFailed,
		ActionFailed, pi.Amount, reason, map[string]interface{}{
			"deposit_required": false,
		})
}

func (s *service) handleIntentCanceled(ctx context.Context, ev providerEvent) error {
	pi, err := decodeIntent(ev)
	if err != nil {
		return err
	}

	booking, err := s.findBookingForIntent(ctx, pi)
	if err != nil {
		return s.ackOrphan(ctx, ev, pi.ID, err)
	}

	return s.applyTransition(ctx, booking, ev, pi.ID, bookings.DepositCancelled,
		ActionCancelled, pi.Amount, "", nil)
}

func (s *service) handleChargeCaptured(ctx context.Context, ev providerEvent) error {
	ch, err := decodeCharge(ev)
	if err != nil {
		return err
	}

	booking, err := s.repo.FindBookingByPaymentIntent(ctx, ch.PaymentIntent)
	if err != nil {
		return s.ackOrphan(ctx, ev, ch.PaymentIntent, err)
	}

	now := time.Now()
	return s.applyTransition(ctx, booking, ev, ch.PaymentIntent, bookings.DepositCaptured,
		ActionCaptured, ch.AmountCaptured, "", map[string]interface{}{
			"deposit_captured_at": now,
		})
}

func (s *service) handleChargeRefunded(ctx context.Context, ev providerEvent) error {
	ch, err := decodeCharge(ev)
	if err != nil {
		return err
	}

	booking, err := s.repo.FindBookingByPaymentIntent(ctx, ch.PaymentIntent)
	if err != nil {
		return s.ackOrphan(ctx, ev, ch.PaymentIntent, err)
	}

	status := bookings.DepositPartiallyRefunded
	action := ActionPartialRefund
	if ch.AmountRefunded >= ch.Amount {
		status = bookings.DepositRefunded
		action = ActionRefunded
	}

	now := time.Now()
	return s.applyTransition(ctx, booking, ev, ch.PaymentIntent, status,
		action, ch.AmountRefunded, "", map[string]interface{}{
			"deposit_refund_amount": ch.AmountRefunded,
			"deposit_refunded_at":   now,
		})
}

// handleDisputeCreated only logs; disputes are resolved by staff in the
// provider dashboard and settle through later charge events.
func (s *service) handleDisputeCreated(ctx context.Context, ev providerEvent) error {
	var d dispute
	if err := json.Unmarshal(ev.Data.Object, &d); err != nil {
		return fmt.Errorf("malformed dispute object: %w", err)
	}

	s.log.InfoWithContext(ctx, "deposit dispute opened", map[string]interface{}{
		"event_id":   ev.ID,
		"dispute_id": d.ID,
		"charge_id":  d.Charge,
		"amount":     d.Amount,
		"reason":     d.Reason,
	})
	return nil
}

// applyTransition records the ledger row and the booking's absolute deposit
// column values atomically. A failed delivery therefore leaves no ledger row
// behind, so the provider's retry is processed fresh instead of being
// mistaken for a replay.
func (s *service) applyTransition(ctx context.Context, booking *bookings.Booking, ev providerEvent,
	paymentIntentID string, status bookings.DepositStatus, action string, amount int64,
	reason string, extra map[string]interface{}) error {

	txn := &DepositTransaction{
		BookingID:               &booking.ID,
		ProviderPaymentIntentID: paymentIntentID,
		ProviderEventID:         ev.ID,
		Action:                  action,
		Amount:                  amount,
		Reason:                  reason,
		PerformedBy:             PerformedByWebhook,
		Metadata:                fmt.Sprintf(`{"event_type":%q}`, ev.Type),
	}

	updates := map[string]interface{}{
		"deposit_status":    status,
		"payment_intent_id": paymentIntentID,
	}
	for k, v := range extra {
		updates[k] = v
	}

	replay, err := s.repo.RecordTransition(ctx, txn, booking.ID, updates)
	if err != nil {
		return fmt.Errorf("record deposit transition: %w", err)
	}
	if replay {
		s.log.InfoWithContext(ctx, "replayed provider event acknowledged", map[string]interface{}{
			"event_id": ev.ID,
			"action":   action,
		})
		return nil
	}

	s.log.LogDepositEvent(ctx, booking.ID.String(), ev.ID, ev.Type, string(status))
	return nil
}

// findBookingForIntent correlates an intent with its booking, preferring the
// booking id carried in metadata (the intent may not be stored on the booking
// row yet when the first event arrives).
func (s *service) findBookingForIntent(ctx context.Context, pi *paymentIntent) (*bookings.Booking, error) {
	if id, ok := pi.Metadata["booking_id"]; ok {
		if bookingID, err := uuid.Parse(id); err == nil {
			if b, err := s.repo.FindBookingByID(ctx, bookingID); err == nil {
				return b, nil
			}
		}
	}
	return s.repo.FindBookingByPaymentIntent(ctx, pi.ID)
}

// ackOrphan acknowledges an event that cannot be matched to any booking.
// Returning an error here would make the provider retry forever against a
// booking that will never exist (e.g. test-mode events).
func (s *service) ackOrphan(ctx context.Context, ev providerEvent, paymentIntentID string, err error) error {
	if errors.Is(err, ErrBookingNotFound) {
		s.log.InfoWithContext(ctx, "provider event without matching booking acknowledged", map[string]interface{}{
			"event_id":          ev.ID,
			"event_type":        ev.Type,
			"payment_intent_id": paymentIntentID,
		})
		return nil
	}
	return err
}

// EnsureDepositIntent returns the open intent for a deposit-requiring
// booking, creating one on first call. The client secret lets the website
// finish card collection in the provider's hosted UI.
func (s *service) EnsureDepositIntent(ctx context.Context, reference string) (*PaymentIntent, error) {
	booking, err := s.repo.FindBookingByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !booking.DepositRequired || booking.DepositAmount == nil || *booking.DepositAmount <= 0 {
		return nil, ErrNoDepositDue
	}
	if booking.IsCancelled() {
		return nil, ErrNoDepositDue
	}

	if booking.PaymentIntentID != nil && *booking.PaymentIntentID != "" {
		pi, err := s.client.GetPaymentIntent(ctx, *booking.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		if pi.Status != "canceled" {
			return pi, nil
		}
	}

	pi, err := s.client.CreatePaymentIntent(ctx, *booking.DepositAmount, s.currency,
		booking.ID.String(), booking.BookingReference)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDepositFields(ctx, booking.ID, map[string]interface{}{
		"payment_intent_id": pi.ID,
	}); err != nil {
		return nil, err
	}

	return pi, nil
}

// CaptureDeposit captures all or part of a held deposit during settlement.
// The authoritative captured state still arrives via the charge webhook; the
// direct update keeps the booking row current if that delivery is delayed.
func (s *service) CaptureDeposit(ctx context.Context, booking *bookings.Booking, amount int64, reason, performedBy string) error {
	if booking.PaymentIntentID == nil || *booking.PaymentIntentID == "" {
		return ErrNoDepositDue
	}
	if booking.DepositStatus != bookings.DepositAuthorized {
		return fmt.Errorf("deposit is not capturable in status %q", booking.DepositStatus)
	}

	if _, err := s.client.CapturePaymentIntent(ctx, *booking.PaymentIntentID, amount); err != nil {
		return err
	}

	captured := amount
	if captured == 0 && booking.DepositAmount != nil {
		captured = *booking.DepositAmount
	}

	txn := &DepositTransaction{
		BookingID:               &booking.ID,
		ProviderPaymentIntentID: *booking.PaymentIntentID,
		ProviderEventID:         syntheticEventID(),
		Action:                  ActionCaptured,
		Amount:                  captured,
		Reason:                  reason,
		PerformedBy:             performedBy,
	}

	now := time.Now()
	_, err := s.repo.RecordTransition(ctx, txn, booking.ID, map[string]interface{}{
		"deposit_status":      bookings.DepositCaptured,
		"deposit_captured_at": now,
	})
	return err
}

// ReleaseDeposit cancels an uncaptured authorization during settlement.
func (s *service) ReleaseDeposit(ctx context.Context, booking *bookings.Booking, reason, performedBy string) error {
	if booking.PaymentIntentID == nil || *booking.PaymentIntentID == "" {
		return ErrNoDepositDue
	}
	if booking.DepositStatus != bookings.DepositAuthorized {
		return fmt.Errorf("deposit is not releasable in status %q", booking.DepositStatus)
	}

	if _, err := s.client.CancelPaymentIntent(ctx, *booking.PaymentIntentID); err != nil {
		return err
	}

	amount := int64(0)
	if booking.DepositAmount != nil {
		amount = *booking.DepositAmount
	}

	txn := &DepositTransaction{
		BookingID:               &booking.ID,
		ProviderPaymentIntentID: *booking.PaymentIntentID,
		ProviderEventID:         syntheticEventID(),
		Action:                  ActionCancelled,
		Amount:                  amount,
		Reason:                  reason,
		PerformedBy:             performedBy,
	}

	_, err := s.repo.RecordTransition(ctx, txn, booking.ID, map[string]interface{}{
		"deposit_status": bookings.DepositCancelled,
	})
	return err
}

// RefundDeposit returns all or part of a captured deposit to the customer,
// initiated by staff from the dashboard. Amount 0 refunds the full deposit.
// The authoritative refunded state still arrives via the charge.refunded
// webhook; the direct update keeps the booking row current in the meantime.
func (s *service) RefundDeposit(ctx context.Context, bookingID uuid.UUID, amount int64, reason string) error {
	booking, err := s.repo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.PaymentIntentID == nil || *booking.PaymentIntentID == "" {
		return ErrNoDepositDue
	}
	if booking.DepositStatus != bookings.DepositCaptured &&
		booking.DepositStatus != bookings.DepositPartiallyRefunded {
		return ErrNotRefundable
	}

	if err := s.client.CreateRefund(ctx, *booking.PaymentIntentID, amount); err != nil {
		return err
	}

	refunded := amount
	if refunded == 0 && booking.DepositAmount != nil {
		refunded = *booking.DepositAmount
	}

	status := bookings.DepositPartiallyRefunded
	action := ActionPartialRefund
	if booking.DepositAmount == nil || refunded >= *booking.DepositAmount {
		status = bookings.DepositRefunded
		action = ActionRefunded
	}

	txn := &DepositTransaction{
		BookingID:               &booking.ID,
		ProviderPaymentIntentID: *booking.PaymentIntentID,
		ProviderEventID:         syntheticEventID(),
		Action:                  action,
		Amount:                  refunded,
		Reason:                  reason,
		PerformedBy:             PerformedByStaff,
	}

	now := time.Now()
	_, err = s.repo.RecordTransition(ctx, txn, booking.ID, map[string]interface{}{
		"deposit_status":        status,
		"deposit_refund_amount": refunded,
		"deposit_refunded_at":   now,
	})
	return err
}

// Transactions returns a booking's deposit ledger for the dashboard.
func (s *service) Transactions(ctx context.Context, bookingID uuid.UUID) ([]DepositTransaction, error) {
	if _, err := s.repo.FindBookingByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, bookingID)
}

func decodeIntent(ev providerEvent) (*paymentIntent, error) {
	var pi paymentIntent
	if err := json.Unmarshal(ev.Data.Object, &pi); err != nil {
		return nil, fmt.Errorf("malformed payment intent object: %w", err)
	}
	return &pi, nil
}

func decodeCharge(ev providerEvent) (*charge, error) {
	var ch charge
	if err := json.Unmarshal(ev.Data.Object, &ch); err != nil {
		return nil, fmt.Errorf("malformed charge object: %w", err)
	}
	return &ch, nil
}

// syntheticEventID marks ledger rows created by settlement calls rather than
// provider deliveries; each is unique so the event-id dedup never collides.
func syntheticEventID() string {
	return "system_" + uuid.New().String()
}
