package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupPublicRoutes configures the customer-facing booking route.
func SetupPublicRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/reservations", controller.CreateBooking)
}

// SetupAdminRoutes configures the staff booking views. Auth middleware is
// applied by the caller on the admin group.
func SetupAdminRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/bookings", controller.ListBookings)
	rg.GET("/bookings/:id", controller.GetBooking)
}
