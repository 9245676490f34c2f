package deposits

import (
	"github.com/gin-gonic/gin"
)

// SetupWebhookRoutes configures the provider webhook endpoint.
func SetupWebhookRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/webhooks/stripe", controller.HandleWebhook)
}

// SetupPublicRoutes configures the customer-facing deposit routes.
func SetupPublicRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/reservations/:reference/deposit-intent", controller.CreateDepositIntent)
}

// SetupAdminRoutes configures the staff deposit routes. JWT auth middleware
// is applied by the caller; refunds move money, so they additionally require
// the given role guard.
func SetupAdminRoutes(rg *gin.RouterGroup, controller *Controller, refundGuard gin.HandlerFunc) {
	rg.GET("/bookings/:id/deposit/transactions", controller.ListTransactions)
	rg.POST("/bookings/:id/deposit/refund", refundGuard, controller.RefundDeposit)
}
