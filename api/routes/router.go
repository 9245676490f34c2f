package routes

import (
	"net/http"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/analytics"
	"github.com/technoactive/donatheresa-website-sub002/internal/auth"
	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
	"github.com/technoactive/donatheresa-website-sub002/internal/cancellation"
	"github.com/technoactive/donatheresa-website-sub002/internal/customers"
	"github.com/technoactive/donatheresa-website-sub002/internal/deposits"
	"github.com/technoactive/donatheresa-website-sub002/internal/reconfirm"
	"github.com/technoactive/donatheresa-website-sub002/internal/settings"
	"github.com/technoactive/donatheresa-website-sub002/internal/shared/config"
	"github.com/technoactive/donatheresa-website-sub002/internal/shared/database"
	"github.com/technoactive/donatheresa-website-sub002/internal/shared/middleware"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	cal      *clock.Calendar
	notifier bookings.Notifier
	tracker  analytics.Tracker

	// Services shared across route groups
	settingsService settings.Service
	bookingRepo     bookings.Repository
	bookingService  bookings.Service
	depositService  deposits.Service
	cancelService   cancellation.Service
	reconfirmSvc    reconfirm.Service
	authService     auth.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cal *clock.Calendar,
	notifier bookings.Notifier, tracker analytics.Tracker) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		cal:      cal,
		notifier: notifier,
		tracker:  tracker,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.buildServices()

	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupPublicRoutes(api)
		r.setupWebhookRoutes(api)
		r.setupCronRoutes(api)
		r.setupAuthRoutes(api)
		r.setupAdminRoutes(api)
	}
}

// buildServices wires the service graph once; several route groups share the
// same instances (the cancellation service serves both the public link and
// the sweep).
func (r *Router) buildServices() {
	pg := r.db.GetPostgreSQL()

	settingsRepo := settings.NewRepository(pg)
	r.settingsService = settings.NewService(settingsRepo)

	customerRepo := customers.NewRepository(pg)
	r.bookingRepo = bookings.NewRepository(pg)

	depositRepo := deposits.NewRepository(pg)
	stripeClient := deposits.NewClient(r.config.Stripe.APIBase, r.config.Stripe.SecretKey)
	r.depositService = deposits.NewService(depositRepo, stripeClient, r.config.Restaurant.Currency)

	r.cancelService = cancellation.NewService(r.bookingRepo, r.depositService,
		r.settingsService, r.cal, r.notifier, r.config.Restaurant.StaffEmail)

	reconfirmRepo := reconfirm.NewRepository(pg)
	r.reconfirmSvc = reconfirm.NewService(reconfirmRepo, r.bookingRepo,
		r.settingsService, r.cal, r.cancelService, r.notifier, r.config.Restaurant.StaffEmail)

	authRepo := auth.NewRepository(pg)
	r.authService = auth.NewService(authRepo, r.config)

	r.bookingService = bookings.NewService(r.bookingRepo, customerRepo, r.settingsService,
		r.cal, r.notifier, r.tracker, r.config.Restaurant.Name, r.config.Restaurant.StaffEmail)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "donatheresa-reservations",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "donatheresa-reservations",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		components := gin.H{"postgres": "up", "redis": "up"}
		status := "ok"

		if sqlDB, err := r.db.GetPostgreSQL().DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			components["postgres"] = "down"
			status = "degraded"
		}
		if rdb := r.db.GetRedis(); rdb == nil || rdb.Ping(c.Request.Context()).Err() != nil {
			components["redis"] = "down"
			status = "degraded"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     status,
			"components": components,
			"version":    r.config.APIVersion,
			"timestamp":  time.Now(),
		})
	})
}

// setupPublicRoutes configures the customer-facing routes
func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	bookingController := bookings.NewController(r.bookingService)
	bookings.SetupPublicRoutes(rg, bookingController)

	depositController := deposits.NewController(r.depositService, r.config.Stripe.WebhookSecret)
	deposits.SetupPublicRoutes(rg, depositController)

	cancelController := cancellation.NewController(r.cancelService)
	cancellation.SetupPublicRoutes(rg, cancelController)

	reconfirmController := reconfirm.NewController(r.reconfirmSvc)
	reconfirm.SetupPublicRoutes(rg, reconfirmController)
}

// setupWebhookRoutes configures the server-to-server provider routes
func (r *Router) setupWebhookRoutes(rg *gin.RouterGroup) {
	depositController := deposits.NewController(r.depositService, r.config.Stripe.WebhookSecret)
	deposits.SetupWebhookRoutes(rg, depositController)
}

// setupCronRoutes configures the scheduled-trigger routes
func (r *Router) setupCronRoutes(rg *gin.RouterGroup) {
	cron := rg.Group("/cron")
	cron.Use(middleware.CronAuth(r.config))

	reconfirmController := reconfirm.NewController(r.reconfirmSvc)
	reconfirm.SetupCronRoutes(cron, reconfirmController)
}

// setupAuthRoutes configures staff authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authController := auth.NewController(r.authService)
	authGroup := rg.Group("/auth")
	auth.SetupAuthRoutes(authGroup, authController)
}

// setupAdminRoutes configures the staff dashboard routes
func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(r.config))

	settingsController := settings.NewController(r.settingsService)
	settings.SetupSettingsRoutes(admin, settingsController)

	bookingController := bookings.NewController(r.bookingService)
	bookings.SetupAdminRoutes(admin, bookingController)

	depositController := deposits.NewController(r.depositService, r.config.Stripe.WebhookSecret)
	deposits.SetupAdminRoutes(admin, depositController, middleware.RequireRoles(auth.RoleManager))

	reconfirmController := reconfirm.NewController(r.reconfirmSvc)
	reconfirm.SetupAdminRoutes(admin, reconfirmController)
}

// ReconfirmService exposes the sweep service for the background job
// processor started in main.
func (r *Router) ReconfirmService() reconfirm.Service {
	return r.reconfirmSvc
}

// AuthService exposes the auth service so main can seed the default admin.
func (r *Router) AuthService() auth.Service {
	return r.authService
}
