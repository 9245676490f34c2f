package auth

import (
	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes configures the staff authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/staff/login", controller.Login)
}
