package settings

import (
	"github.com/gin-gonic/gin"
)

// SetupSettingsRoutes configures the staff-facing settings routes.
// Auth middleware is applied by the caller on the admin group.
func SetupSettingsRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/settings", controller.GetSettings)
	rg.PUT("/settings", controller.UpdateSettings)
}
