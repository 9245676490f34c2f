package cancellation

import (
	"net/http"

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

// PreviewCancellation handles GET /api/v1/reservations/cancel/:token
func (c *Controller) PreviewCancellation(ctx *gin.Context) {
	preview, err := c.service.Preview(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		c.respondError(ctx, err, "cancellation preview failed")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Cancellation preview", preview, nil)
}

// ExecuteCancellation handles POST /api/v1/reservations/cancel/:token
func (c *Controller) ExecuteCancellation(ctx *gin.Context) {
	outcome, err := c.service.Cancel(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		c.respondError(ctx, err, "cancellation failed")
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		outcome.Message, outcome, nil)
}

func (c *Controller) respondError(ctx *gin.Context, err error, logMsg string) {
	switch err {
	case bookings.ErrNotFound:
		response.RespondJSON(ctx, "error", http.StatusNotFound,
			"We could not find a booking for this link.", nil, nil)
	case ErrAlreadyCancelled:
		response.RespondJSON(ctx, "error", http.StatusConflict,
			"This booking has already been cancelled.", nil, nil)
	default:
		c.log.ErrorWithContext(ctx.Request.Context(), logMsg, err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Something went wrong. Please call us to cancel your booking.", nil, nil)
	}
}
