package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware lets the configured frontend origins call the API with
// credentials. allowedOrigins is the comma-separated ALLOWED_ORIGINS value.
// AllowWebSockets stays on for the /api/ws upgrade.
func CORSMiddleware(allowedOrigins string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	corsConfig.AllowWebSockets = true
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "Accept")

	return cors.New(corsConfig)
}
