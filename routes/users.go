package routes

import (
	"errors"
	"log"
	"net/http"

	"lumen-notes/lumen/database"
	"lumen-notes/lumen/services"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes exposes the caller's own profile. There is no
// cross-user surface; identity always comes from the token.
func RegisterUserRoutes(group *gin.RouterGroup, db *database.Database, userService services.UserServiceInterface) {
	group.GET("/users/me", func(c *gin.Context) { GetProfile(c, db, userService) })
	group.DELETE("/users/me", func(c *gin.Context) { DeleteProfile(c, db, userService) })
}

func GetProfile(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	user, err := userService.GetUserById(db, userID.String())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Failed to fetch user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func DeleteProfile(c *gin.Context, db *database.Database, userService services.UserServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := userService.DeleteUser(db, userID.String()); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Failed to delete user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}
	c.Status(http.StatusNoContent)
}
