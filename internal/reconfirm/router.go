package reconfirm

import (
	"github.com/gin-gonic/gin"
)

// SetupPublicRoutes configures the token-bearing reconfirmation links.
func SetupPublicRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/reservations/reconfirm/:token", controller.GetSummary)
	rg.POST("/reservations/reconfirm/:token", controller.Apply)
}

// SetupCronRoutes configures the sweep trigger. Cron auth middleware is
// applied by the caller.
func SetupCronRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/reconfirmation-sweep", controller.TriggerSweep)
}

// SetupAdminRoutes configures the staff dashboard inbox. JWT auth middleware
// is applied by the caller.
func SetupAdminRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/notifications", controller.ListNotifications)
}
