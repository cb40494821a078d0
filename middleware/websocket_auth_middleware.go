package middleware

import (
	"net/http"

	"lumen-notes/lumen/services"
	"lumen-notes/lumen/utils/token"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware validates JWT tokens for WebSocket connections.
// Browsers cannot set headers on WebSocket upgrades, so the token may also
// arrive as a query parameter.
func WebSocketAuthMiddleware(authService services.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := token.ExtractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}
