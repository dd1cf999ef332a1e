package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"travel_risk/internal/access" // Principal type
	"travel_risk/internal/domain" // Domain models
	"travel_risk/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Context keys set by the auth middleware
const (
	UserIDKey    = "userID"
	UserKey      = "user"
	PrincipalKey = "principal"
)

// JWTAuthMiddleware validates the bearer access token and loads the user it names.
// The role used for authorization comes from the database, not the token.
func JWTAuthMiddleware(secret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		claims, err := utils.ParseJWT(strings.TrimSpace(parts[1]), secret, utils.TokenAccess) // Parse the JWT token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		c.Set(UserIDKey, user.ID)                      // Store userID in context
		c.Set(UserKey, &user)                          // Store loaded user
		c.Set(PrincipalKey, access.PrincipalOf(&user)) // Store principal for scoping
		c.Next()                                       // Proceed to the next handler
	}
}

// CurrentPrincipal returns the principal stored by JWTAuthMiddleware
func CurrentPrincipal(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}

// CurrentUser returns the user stored by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}
