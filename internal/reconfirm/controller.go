package reconfirm

import (
	"net/http"
	"strconv"

	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
	"github.com/technoactive/donatheresa-website-sub002/internal/shared/utils/response"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service) *Controller {
	return &Controller{service: service, log: logger.GetDefault()}
}

// GetSummary handles GET /api/v1/reservations/reconfirm/:token
func (c *Controller) GetSummary(ctx *gin.Context) {
	summary, err := c.service.Summary(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		c.respondError(ctx, err, "reconfirmation summary failed")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Booking summary", summary, nil)
}

// Apply handles POST /api/v1/reservations/reconfirm/:token
func (c *Controller) Apply(ctx *gin.Context) {
	var req ApplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Action must be confirm or cancel", nil, response.FieldErrors(err))
		return
	}

	message, err := c.service.Apply(ctx.Request.Context(), ctx.Param("token"), req.Action)
	if err != nil {
		c.respondError(ctx, err, "reconfirmation apply failed")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, message, nil, nil)
}

// TriggerSweep handles POST /api/v1/cron/reconfirmation-sweep
func (c *Controller) TriggerSweep(ctx *gin.Context) {
	result, err := c.service.Sweep(ctx.Request.Context())
	if err != nil {
		c.log.ErrorWithContext(ctx.Request.Context(), "manual sweep failed", err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Sweep failed", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Sweep completed", result, nil)
}

// ListNotifications handles GET /api/v1/admin/notifications
func (c *Controller) ListNotifications(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	notifications, err := c.service.Notifications(ctx.Request.Context(), limit)
	if err != nil {
		c.log.ErrorWithContext(ctx.Request.Context(), "failed to list internal notifications", err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Failed to load notifications", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Internal notifications", gin.H{"notifications": notifications}, nil)
}

func (c *Controller) respondError(ctx *gin.Context, err error, logMsg string) {
	switch err {
	case bookings.ErrNotFound:
		response.RespondJSON(ctx, "error", http.StatusNotFound,
			"We could not find a booking for this link.", nil, nil)
	case ErrBookingCancelled:
		response.RespondJSON(ctx, "error", http.StatusConflict,
			"This booking has already been cancelled.", nil, nil)
	default:
		c.log.ErrorWithContext(ctx.Request.Context(), logMsg, err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Something went wrong. Please call us about your booking.", nil, nil)
	}
}
