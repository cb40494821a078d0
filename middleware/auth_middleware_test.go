package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lumen-notes/lumen/services"
	"lumen-notes/lumen/utils/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProtectedRouter(authService services.AuthServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(authService), func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"user_id": userID.(uuid.UUID).String()})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	authService := services.NewAuthService("test-secret", 1)
	router := setupProtectedRouter(authService)

	userID := uuid.New()
	validToken, err := token.GenerateToken(userID, "alice@example.com", []byte("test-secret"), time.Hour)
	require.NoError(t, err)

	t.Run("Missing Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token "+validToken)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestWebSocketAuthMiddleware_QueryToken(t *testing.T) {
	authService := services.NewAuthService("test-secret", 1)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", WebSocketAuthMiddleware(authService), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	userID := uuid.New()
	validToken, err := token.GenerateToken(userID, "alice@example.com", []byte("test-secret"), time.Hour)
	require.NoError(t, err)

	t.Run("Token In Query", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ws?token="+validToken, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("No Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ws", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
