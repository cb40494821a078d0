package routes

import (
	"errors"
	"log"
	"net/http"

	"lumen-notes/lumen/database"
	"lumen-notes/lumen/models"
	"lumen-notes/lumen/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

func RegisterAuthRoutes(router *gin.Engine, db *database.Database, authService services.AuthServiceInterface, userService services.UserServiceInterface) {
	group := router.Group("/api/auth")
	{
		group.POST("/login", func(c *gin.Context) { Login(c, db, authService) })
		group.POST("/register", func(c *gin.Context) { Register(c, db, authService, userService) })
	}
}

func Login(c *gin.Context, db *database.Database, authService services.AuthServiceInterface) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := authService.Login(db, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token})
}

func Register(c *gin.Context, db *database.Database, authService services.AuthServiceInterface, userService services.UserServiceInterface) {
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passwordHash, err := authService.HashPassword(request.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	user := models.User{
		Email:        request.Email,
		PasswordHash: passwordHash,
		DisplayName:  request.DisplayName,
	}

	createdUser, err := userService.CreateUser(db, user)
	if err != nil {
		if errors.Is(err, services.ErrResourceExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		log.Printf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusCreated, createdUser)
}
