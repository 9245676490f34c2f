package bookings

// Status represents the lifecycle state of a booking. Bookings are never
// deleted; cancellation is a status change.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// DepositStatus tracks the deposit lifecycle. Transitions form a DAG:
// none -> authorized -> {captured, cancelled, failed}; captured ->
// {refunded, partially_refunded}. Webhook handlers set absolute values so
// replayed deliveries are harmless.
type DepositStatus string

const (
	DepositNone              DepositStatus = "none"
	DepositAuthorized        DepositStatus = "authorized"
	DepositCaptured          DepositStatus = "captured"
	DepositCancelled         DepositStatus = "cancelled"
	DepositFailed            DepositStatus = "failed"
	DepositRefunded          DepositStatus = "refunded"
	DepositPartiallyRefunded DepositStatus = "partially_refunded"
)

// ReconfirmationStatus tracks the customer's response to a reconfirmation
// request.
type ReconfirmationStatus string

const (
	ReconfirmPending   ReconfirmationStatus = "pending"
	ReconfirmConfirmed ReconfirmationStatus = "confirmed"
	ReconfirmExpired   ReconfirmationStatus = "expired"
)

// Booking sources
const (
	SourceWebsite   = "website"
	SourceDashboard = "dashboard"
)
