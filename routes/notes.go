package routes

import (
	"errors"
	"log"
	"net/http"

	"lumen-notes/lumen/database"
	"lumen-notes/lumen/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface) {
	group.GET("/notes", func(c *gin.Context) { GetNotes(c, db, noteService) })
	group.POST("/notes", func(c *gin.Context) { CreateNote(c, db, noteService) })
	group.PUT("/notes/:id", func(c *gin.Context) { UpdateNote(c, db, noteService) })
	group.DELETE("/notes/:id", func(c *gin.Context) { DeleteNote(c, db, noteService) })
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

func GetNotes(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	notes, err := noteService.ListNotesByUser(db, userID)
	if err != nil {
		log.Printf("Failed to list notes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, notes)
}

func CreateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	var noteData map[string]interface{}
	if err := c.ShouldBindJSON(&noteData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	createdNote, err := noteService.CreateNote(db, userID, noteData)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Fields})
			return
		}
		log.Printf("Failed to create note: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, createdNote)
}

func UpdateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	id := c.Param("id")
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := callerID(c)
	if !ok {
		return
	}

	updatedNote, err := noteService.UpdateNote(db, userID, id, patch)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrNoteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "Note not found"})
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorized"})
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"errors": validationErr.Fields})
		default:
			log.Printf("Failed to update note: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		}
		return
	}
	c.JSON(http.StatusOK, updatedNote)
}

func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	id := c.Param("id")

	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := noteService.DeleteNote(db, userID, id); err != nil {
		switch {
		case errors.Is(err, services.ErrNoteNotFound):
			c.JSON(http.StatusNotFound, gin.H{"msg": "Note not found"})
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Not authorized"})
		default:
			log.Printf("Failed to delete note: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Note removed"})
}
