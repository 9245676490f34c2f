package deposits

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ledger actions. One row is appended per state-changing provider event.
const (
	ActionAuthorized    = "authorized"
	ActionCaptured      = "captured"
	ActionCancelled     = "cancelled"
	ActionFailed        = "failed"
	ActionRefunded      = "refunded"
	ActionPartialRefund = "partial_refund"
)

// Actors recorded against ledger rows
const (
	PerformedByWebhook = "stripe_webhook"
	PerformedByStaff   = "staff"
	PerformedBySystem  = "system"
)

// DepositTransaction is the append-only deposit audit ledger. Rows are never
// mutated or deleted. The unique index on (provider_event_id, action) turns a
// replayed webhook delivery into a detectable duplicate-key insert, keeping
// the ledger 1:1 with real payment events.
type DepositTransaction struct {
	ID                      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID               *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	ProviderPaymentIntentID string     `gorm:"index" json:"provider_payment_intent_id"`
	ProviderEventID         string     `gorm:"uniqueIndex:idx_deposit_txn_event_action;not null" json:"provider_event_id"`
	Action                  string     `gorm:"uniqueIndex:idx_deposit_txn_event_action;type:varchar(20);not null" json:"action"`
	Amount                  int64      `json:"amount"`
	Reason                  string     `json:"reason,omitempty"`
	PerformedBy             string     `gorm:"type:varchar(20);not null" json:"performed_by"`
	Metadata                string     `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

// TableName sets the table name for DepositTransaction
func (DepositTransaction) TableName() string {
	return "deposit_transactions"
}

// RefundRequest is the staff dashboard's refund form. Amount 0 refunds the
// full deposit.
type RefundRequest struct {
	Amount int64  `json:"amount" binding:"omitempty,min=1"`
	Reason string `json:"reason" binding:"required,max=200"`
}

// Provider wire types. Only the fields the state machine reads are declared;
// everything else in the payload is ignored.

type providerEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntent struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	Amount           int64             `json:"amount"`
	AmountCapturable int64             `json:"amount_capturable"`
	AmountReceived   int64             `json:"amount_received"`
	CaptureMethod    string            `json:"capture_method"`
	ClientSecret     string            `json:"client_secret"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

type charge struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	Amount         int64  `json:"amount"`
	AmountCaptured int64  `json:"amount_captured"`
	AmountRefunded int64  `json:"amount_refunded"`
	Captured       bool   `json:"captured"`
	Refunded       bool   `json:"refunded"`
}

type dispute struct {
	ID     string `json:"id"`
	Charge string `json:"charge"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
	Status string `json:"status"`
}

type refund struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
}
