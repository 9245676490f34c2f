package bookings

import (
	"net/http"

	"github.com/technoactive/donatheresa-website-sub002/internal/shared/utils/response"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service) *Controller {
	return &Controller{service: service, log: logger.GetDefault()}
}

// CreateBooking handles POST /api/v1/reservations
func (c *Controller) CreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Please check the booking form and try again", nil, response.FieldErrors(err))
		return
	}

	result, err := c.service.CreateBooking(ctx.Request.Context(), req, SourceWebsite)
	if err != nil {
		// Internal detail stays in the logs; the customer gets a generic line.
		c.log.ErrorWithContext(ctx.Request.Context(), "booking admission failed", err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"We could not complete your booking. Please try again or call us.", nil, nil)
		return
	}

	if !result.Success {
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity,
			result.Message, result, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated,
		result.Message, result, nil)
}

// GetBooking handles GET /api/v1/admin/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), id)
	if err != nil {
		if err == ErrNotFound {
			response.RespondJSON(ctx, "error", http.StatusNotFound,
				"Booking not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Failed to retrieve booking", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Booking retrieved", booking, nil)
}

// ListBookings handles GET /api/v1/admin/bookings
func (c *Controller) ListBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid query parameters", nil, nil)
		return
	}

	bookings, total, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Failed to retrieve bookings", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Bookings retrieved", gin.H{
			"bookings": bookings,
			"total":    total,
		}, nil)
}
