package middleware

import (
	"net/http"
	"strings"

	"lumen-notes/lumen/services"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller identity under the userID and email context keys. Note
// handlers trust userID as the owner for every operation.
func AuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Expected a Bearer token"})
			return
		}

		claims, err := authService.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}
