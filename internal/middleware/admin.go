package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminRequired checks that the authenticated user has the ADMIN role.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			abort(c, http.StatusForbidden, "Forbidden", "admin access required")
			return
		}
		c.Next()
	}
}
