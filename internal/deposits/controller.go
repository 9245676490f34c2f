package deposits

import (
	"io"
	"net/http"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/shared/utils/response"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxWebhookBodySize caps webhook payloads; provider events are small.
const maxWebhookBodySize = 1 << 20

type Controller struct {
	service       Service
	webhookSecret string
	log           *logger.Logger
}

func NewController(service Service, webhookSecret string) *Controller {
	return &Controller{
		service:       service,
		webhookSecret: webhookSecret,
		log:           logger.GetDefault(),
	}
}

// HandleWebhook handles POST /api/v1/webhooks/stripe. Signature verification
// happens against the raw body before anything is parsed; an unverified
// payload never reaches the state machine. Response codes steer provider
// retries: 200 marks the delivery processed (including unhandled types), 400
// rejects a forgery outright, 500 asks for a retry.
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxWebhookBodySize))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Unable to read request body", nil, nil)
		return
	}

	sigHeader := ctx.GetHeader("Stripe-Signature")
	if err := VerifySignature(payload, sigHeader, c.webhookSecret, time.Now()); err != nil {
		c.log.LogWebhookRejected(ctx.Request.Context(), err.Error(), ctx.ClientIP())
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid signature", nil, nil)
		return
	}

	if err := c.service.ProcessEvent(ctx.Request.Context(), payload); err != nil {
		c.log.ErrorWithContext(ctx.Request.Context(), "webhook processing failed", err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Event processing failed", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event processed", nil, nil)
}

// CreateDepositIntent handles POST /api/v1/reservations/:reference/deposit-intent
func (c *Controller) CreateDepositIntent(ctx *gin.Context) {
	reference := ctx.Param("reference")

	pi, err := c.service.EnsureDepositIntent(ctx.Request.Context(), reference)
	if err != nil {
		switch err {
		case ErrBookingNotFound:
			response.RespondJSON(ctx, "error", http.StatusNotFound,
				"Booking not found", nil, nil)
		case ErrNoDepositDue:
			response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity,
				"No deposit is due for this booking", nil, nil)
		default:
			c.log.ErrorWithContext(ctx.Request.Context(), "deposit intent setup failed", err, map[string]interface{}{
				"reference": reference,
			})
			response.RespondJSON(ctx, "error", http.StatusInternalServerError,
				"Unable to set up the deposit payment. Please try again.", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Deposit intent ready", gin.H{
		"paymentIntentId": pi.ID,
		"clientSecret":    pi.ClientSecret,
		"amount":          pi.Amount,
	}, nil)
}

// RefundDeposit handles POST /api/v1/admin/bookings/:id/deposit/refund
func (c *Controller) RefundDeposit(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid booking id", nil, nil)
		return
	}

	var req RefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid refund request", nil, response.FieldErrors(err))
		return
	}

	if err := c.service.RefundDeposit(ctx.Request.Context(), bookingID, req.Amount, req.Reason); err != nil {
		switch err {
		case ErrBookingNotFound:
			response.RespondJSON(ctx, "error", http.StatusNotFound,
				"Booking not found", nil, nil)
		case ErrNoDepositDue, ErrNotRefundable:
			response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity,
				"This booking has no captured deposit to refund", nil, nil)
		default:
			c.log.ErrorWithContext(ctx.Request.Context(), "deposit refund failed", err, map[string]interface{}{
				"booking_id": bookingID.String(),
			})
			response.RespondJSON(ctx, "error", http.StatusInternalServerError,
				"Refund failed", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Refund initiated", nil, nil)
}

// ListTransactions handles GET /api/v1/admin/bookings/:id/deposit/transactions
func (c *Controller) ListTransactions(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid booking id", nil, nil)
		return
	}

	txns, err := c.service.Transactions(ctx.Request.Context(), bookingID)
	if err != nil {
		if err == ErrBookingNotFound {
			response.RespondJSON(ctx, "error", http.StatusNotFound,
				"Booking not found", nil, nil)
			return
		}
		c.log.ErrorWithContext(ctx.Request.Context(), "failed to list deposit transactions", err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Failed to load deposit history", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Deposit transactions", gin.H{"transactions": txns}, nil)
}
