package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/technoactive/donatheresa-website-sub002/internal/shared/config"
	"github.com/technoactive/donatheresa-website-sub002/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth creates a JWT authentication middleware for the staff surface
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
				response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
				c.Abort()
				return
			}
			c.Set("staff_id", claims["staff_id"])
			c.Set("staff_email", claims["email"])
			c.Set("staff_role", claims["role"])
		}

		c.Next()
	}
}

// RequireRoles middleware checks if the staff user has one of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("staff_role")
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "staff role not found in context", nil, nil)
			c.Abort()
			return
		}

		role, _ := roleValue.(string)
		for _, required := range requiredRoles {
			if role == required {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "insufficient permissions", nil, nil)
		c.Abort()
	}
}

// CronAuth guards scheduled-trigger endpoints with a shared bearer secret.
// An empty configured secret leaves the endpoint open (local development).
func CronAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Cron.Secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" ||
			subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.Cron.Secret)) != 1 {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid cron secret", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
