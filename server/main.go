package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/api/routes"
	"github.com/technoactive/donatheresa-website-sub002/internal/analytics"
	"github.com/technoactive/donatheresa-website-sub002/internal/bookings"
	"github.com/technoactive/donatheresa-website-sub002/internal/notifications"
	"github.com/technoactive/donatheresa-website-sub002/internal/reconfirm"
	"github.com/technoactive/donatheresa-website-sub002/internal/shared/config"
	"github.com/technoactive/donatheresa-website-sub002/internal/shared/database"
	"github.com/technoactive/donatheresa-website-sub002/pkg/clock"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"
	"github.com/technoactive/donatheresa-website-sub002/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	cal, err := clock.New(cfg.Restaurant.Timezone)
	if err != nil {
		appLogger.Error("invalid restaurant timezone", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db.GetPostgreSQL()); err != nil {
		appLogger.Error("database migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			WebhookRequests: cfg.RateLimit.WebhookRequests,
			CronRequests:    cfg.RateLimit.CronRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("booking_requests", cfg.RateLimit.BookingRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Notification pipeline + analytics tracker; both degrade to no-ops when
	// Kafka is disabled or unreachable so booking admission keeps working.
	var notifier bookings.Notifier
	var tracker analytics.Tracker = analytics.NewNopTracker()

	if cfg.Kafka.Enabled {
		producer, err := notifications.NewKafkaProducer(
			notifications.DefaultKafkaProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic))
		if err != nil {
			appLogger.Error("Failed to initialize notification producer, continuing without notifications",
				slog.Any("error", err))
			notifier = notifications.NewDispatcher(nil, cfg.Notify.DispatchTimeout)
		} else {
			defer producer.Close()
			notifier = notifications.NewDispatcher(producer, cfg.Notify.DispatchTimeout)
			tracker = analytics.NewKafkaTracker(producer.SyncProducer(), cfg.Kafka.AnalyticsTopic)
			appLogger.Info("Notification pipeline initialized",
				slog.String("topic", cfg.Kafka.NotificationTopic))
		}
	} else {
		notifier = notifications.NewDispatcher(nil, cfg.Notify.DispatchTimeout)
		appLogger.Info("Notification pipeline disabled")
	}

	// Router
	appRouter := routes.NewRouter(cfg, db, cal, notifier, tracker)
	engine := setupEngine(cfg, rateLimiter)
	appRouter.SetupRoutes(engine)

	// Seed the first staff account if configured
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := appRouter.AuthService().EnsureDefaultAdmin(seedCtx); err != nil {
		appLogger.Error("failed to seed default admin", slog.Any("error", err))
	}
	seedCancel()

	// Background reconfirmation sweep
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()

	jobProcessor := reconfirm.NewJobProcessor(appRouter.ReconfirmService(), cfg.Cron.SweepInterval)
	jobProcessor.Start(jobCtx)
	defer jobProcessor.Stop()

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", Version),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("notifications", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupEngine(cfg *config.Config, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(requestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	return engine
}

func requestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
