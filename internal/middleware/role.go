package middleware

import (
	"net/http" // HTTP status codes

	"travel_risk/internal/access" // Role checks

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireRoles lets the request through only for the given roles. Must run after JWTAuthMiddleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		// Check if principal exists in context
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		// Check if user role is allowed
		if !access.AllowRole(p.Role, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}
