package routes

import (
	"github.com/gin-gonic/gin"

	"lumen-notes/lumen/middleware"
	"lumen-notes/lumen/services"
)

// RegisterWebSocketRoutes sets up the realtime note event stream.
func RegisterWebSocketRoutes(router *gin.Engine, authService services.AuthServiceInterface, wsService services.WebSocketServiceInterface) {
	wsGroup := router.Group("/api/ws")
	wsGroup.Use(middleware.WebSocketAuthMiddleware(authService))
	{
		wsGroup.GET("", func(c *gin.Context) {
			wsService.HandleConnection(c)
		})
	}
}
