package auth

import (
	"net/http"

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

// Login handles POST /api/v1/auth/staff/login
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest,
			"Invalid login payload", nil, response.FieldErrors(err))
		return
	}

	result, err := c.service.Login(ctx.Request.Context(), req)
	if err != nil {
		if err == ErrInvalidCredentials {
			c.log.LogAuthFailure(ctx.Request.Context(), "invalid credentials", ctx.ClientIP())
			response.RespondJSON(ctx, "error", http.StatusUnauthorized,
				"Invalid email or password", nil, nil)
			return
		}
		c.log.ErrorWithContext(ctx.Request.Context(), "staff login failed", err, nil)
		response.RespondJSON(ctx, "error", http.StatusInternalServerError,
			"Login failed", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK,
		"Login successful", result, nil)
}
