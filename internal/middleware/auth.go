package middleware

import (
	"net/http"
	"strings"

	"hubln/config"
	"hubln/internal/auth"
	"hubln/internal/domain"

	"github.com/gin-gonic/gin"
)

// abort writes the standard failure envelope.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message, "code": code})
}

// AuthRequired validates JWT and sets UserID, Email, Role in context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "Unauthorized", "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, "Unauthorized", "invalid authorization format")
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, "InvalidToken", "invalid or expired token")
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// GetUserID returns the authenticated user ID from context (must be used after AuthRequired).
func GetUserID(c *gin.Context) uint {
	v, ok := c.Get("user_id")
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == domain.RoleAdmin
}
