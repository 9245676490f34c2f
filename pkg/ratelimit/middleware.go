package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/technoactive/donatheresa-website-sub002/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware applies sliding-window rate limiting keyed by client IP.
// The booking class is the abuse boundary for the public reservation form:
// it runs before any business validation so rejected attempts stay cheap.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusInternalServerError,
				"Rate limit check failed", nil, nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Too many booking attempts. Please try again later.", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(path string) RateLimitType {
	switch {
	// Health/monitoring endpoints
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"):
		return RateLimitTypeHealth

	// Provider callbacks retry aggressively; keep their budget generous
	case strings.Contains(path, "/webhooks/"):
		return RateLimitTypeWebhook

	// Scheduled triggers
	case strings.Contains(path, "/cron/"):
		return RateLimitTypeCron

	// Staff dashboard surface
	case strings.Contains(path, "/admin/"):
		return RateLimitTypeAdmin

	// Staff authentication
	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth

	// Reservation creation and the token-bearing self-service links
	case strings.Contains(path, "/reservations"):
		return RateLimitTypeBooking

	default:
		return RateLimitTypeDefault
	}
}

// getClientIP extracts real client IP
func getClientIP(c *gin.Context) string {
	// Check X-Forwarded-For header
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	// Check X-Real-IP header
	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
