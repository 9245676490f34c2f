package settings

import (
	"net/http"

	"github.com/technoactive/donatheresa-website-sub002/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetSettings handles GET /api/v1/admin/settings
func (c *Controller) GetSettings(ctx *gin.Context) {
	s, err := c.service.Get(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Failed to load booking settings", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Booking settings retrieved", s, nil)
}

// UpdateSettings handles PUT /api/v1/admin/settings
func (c *Controller) UpdateSettings(ctx *gin.Context) {
	var req UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid settings payload", nil, response.FieldErrors(err))
		return
	}

	updated, err := c.service.Update(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			err.Error(), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Booking settings updated", updated, nil)
}
