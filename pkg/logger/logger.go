package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Business logic logging methods

// LogBookingCreated logs a successful booking admission
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, reference, date, timeSlot string, partySize int) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("reference", reference),
		slog.String("date", date),
		slog.String("time", timeSlot),
		slog.Int("party_size", partySize),
	)
}

// LogBookingCancelled logs a booking cancellation
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, reference, reason string) {
	l.Logger.InfoContext(ctx,
		"Booking Cancelled",
		slog.String("booking_id", bookingID),
		slog.String("reference", reference),
		slog.String("reason", reason),
	)
}

// LogDepositEvent logs a deposit state transition driven by a provider event
func (l *Logger) LogDepositEvent(ctx context.Context, bookingID, eventID, eventType, newStatus string) {
	l.Logger.InfoContext(ctx,
		"Deposit Event Processed",
		slog.String("booking_id", bookingID),
		slog.String("provider_event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("deposit_status", newStatus),
	)
}

// Security logging methods

// LogWebhookRejected logs a webhook delivery that failed signature verification
func (l *Logger) LogWebhookRejected(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Webhook Signature Rejected",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogAuthFailure logs failed staff authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Side-effect logging methods

// LogNotificationFailure logs a best-effort notification that could not be
// dispatched; never escalated to the caller.
func (l *Logger) LogNotificationFailure(ctx context.Context, templateKey, recipient string, err error) {
	l.Logger.WarnContext(ctx,
		"Notification Dispatch Failed",
		slog.String("template", templateKey),
		slog.String("recipient", recipient),
		slog.String("error", err.Error()),
	)
}

// LogSweepResult logs the outcome of a reconfirmation expiry sweep run
func (l *Logger) LogSweepResult(ctx context.Context, autoCancelled, flagged, reminded, errCount int) {
	l.Logger.InfoContext(ctx,
		"Reconfirmation Sweep Completed",
		slog.Int("auto_cancelled", autoCancelled),
		slog.Int("flagged", flagged),
		slog.Int("reminded", reminded),
		slog.Int("errors", errCount),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
