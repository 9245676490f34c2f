package cancellation

import (
	"github.com/gin-gonic/gin"
)

// SetupPublicRoutes configures the token-bearing cancellation links.
func SetupPublicRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/reservations/cancel/:token", controller.PreviewCancellation)
	rg.POST("/reservations/cancel/:token", controller.ExecuteCancellation)
}
