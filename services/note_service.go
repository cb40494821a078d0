package services

import (
	"errors"
	"fmt"
	"time"

	"lumen-notes/lumen/broker"
	"lumen-notes/lumen/database"
	"lumen-notes/lumen/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteServiceInterface interface {
	CreateNote(db *database.Database, userID uuid.UUID, noteData map[string]interface{}) (models.Note, error)
	UpdateNote(db *database.Database, userID uuid.UUID, id string, patch map[string]interface{}) (models.Note, error)
	DeleteNote(db *database.Database, userID uuid.UUID, id string) error
	ListNotesByUser(db *database.Database, userID uuid.UUID) ([]models.Note, error)
}

type NoteService struct{}

func (s *NoteService) CreateNote(db *database.Database, userID uuid.UUID, noteData map[string]interface{}) (models.Note, error) {
	var fields []FieldError
	title, _ := noteData["title"].(string)
	if title == "" {
		fields = append(fields, FieldError{Field: "title", Msg: "Title is required"})
	}
	content, _ := noteData["content"].(string)
	if content == "" {
		fields = append(fields, FieldError{Field: "content", Msg: "Content is required"})
	}
	if len(fields) > 0 {
		return models.Note{}, &ValidationError{Fields: fields}
	}

	// Ownership comes from the authenticated caller only; any owner or
	// user field in the payload is ignored.
	note := models.Note{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Color:     models.DefaultNoteColor,
	}

	if color, ok := noteData["color"].(string); ok && color != "" {
		note.Color = color
	}
	if v, ok := noteData["isFavorite"].(bool); ok {
		note.IsFavorite = v
	}
	if v, ok := noteData["isTask"].(bool); ok {
		note.IsTask = v
	}
	if v, ok := noteData["isCompleted"].(bool); ok {
		note.IsCompleted = v
	}
	if v, ok := noteData["reminder"]; ok {
		reminder, err := parseReminder(v)
		if err != nil {
			return models.Note{}, &ValidationError{Fields: []FieldError{
				{Field: "reminder", Msg: "Reminder must be an RFC 3339 timestamp"},
			}}
		}
		note.Reminder = reminder
	}
	if v, ok := noteData["highlights"]; ok {
		note.Highlights = toStringList(v)
	}
	if v, ok := noteData["images"]; ok {
		note.Images = toStringList(v)
	}
	if v, ok := noteData["urls"]; ok {
		note.URLs = toStringList(v)
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	if err := tx.Create(&note).Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := createNoteEvent(tx, broker.NoteCreated, "create", note); err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	return note, nil
}

func (s *NoteService) UpdateNote(db *database.Database, userID uuid.UUID, id string, patch map[string]interface{}) (models.Note, error) {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return models.Note{}, ErrNoteNotFound
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Note{}, tx.Error
	}

	var note models.Note
	if err := tx.First(&note, "id = ?", noteID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}

	if note.UserID != userID {
		tx.Rollback()
		return models.Note{}, ErrNotAuthorized
	}

	// Merge-patch: a field is applied iff its key is present in the request,
	// so explicit zero values (empty title, false flag) are honored and
	// omitted fields keep their stored value.
	var changed []string
	if v, ok := patch["title"]; ok {
		note.Title = asString(v)
		changed = append(changed, "title")
	}
	if v, ok := patch["content"]; ok {
		note.Content = asString(v)
		changed = append(changed, "content")
	}
	if v, ok := patch["color"]; ok {
		note.Color = asString(v)
		changed = append(changed, "color")
	}
	if v, ok := patch["isFavorite"]; ok {
		note.IsFavorite = asBool(v)
		changed = append(changed, "is_favorite")
	}
	if v, ok := patch["isTask"]; ok {
		note.IsTask = asBool(v)
		changed = append(changed, "is_task")
	}
	if v, ok := patch["isCompleted"]; ok {
		note.IsCompleted = asBool(v)
		changed = append(changed, "is_completed")
	}
	if v, ok := patch["reminder"]; ok {
		reminder, err := parseReminder(v)
		if err != nil {
			tx.Rollback()
			return models.Note{}, &ValidationError{Fields: []FieldError{
				{Field: "reminder", Msg: "Reminder must be an RFC 3339 timestamp"},
			}}
		}
		note.Reminder = reminder
		changed = append(changed, "reminder")
	}
	if v, ok := patch["highlights"]; ok {
		note.Highlights = toStringList(v)
		changed = append(changed, "highlights")
	}
	if v, ok := patch["images"]; ok {
		note.Images = toStringList(v)
		changed = append(changed, "images")
	}
	if v, ok := patch["urls"]; ok {
		note.URLs = toStringList(v)
		changed = append(changed, "urls")
	}

	if len(changed) > 0 {
		// Conditioning on the owner collapses the load-check-write sequence
		// into one guarded statement; a concurrent delete shows up as zero
		// affected rows instead of a resurrected note.
		result := tx.Model(&models.Note{}).
			Where("id = ? AND user_id = ?", note.ID, userID).
			Select(changed).
			Updates(note)
		if result.Error != nil {
			tx.Rollback()
			return models.Note{}, result.Error
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return models.Note{}, ErrNoteNotFound
		}
	}

	if err := createNoteEvent(tx, broker.NoteUpdated, "update", note); err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Note{}, err
	}

	return note, nil
}

func (s *NoteService) DeleteNote(db *database.Database, userID uuid.UUID, id string) error {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return ErrNoteNotFound
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var note models.Note
	if err := tx.First(&note, "id = ?", noteID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	if note.UserID != userID {
		tx.Rollback()
		return ErrNotAuthorized
	}

	result := tx.Where("id = ? AND user_id = ?", note.ID, userID).Delete(&models.Note{})
	if result.Error != nil {
		tx.Rollback()
		return result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrNoteNotFound
	}

	if err := createNoteEvent(tx, broker.NoteDeleted, "delete", note); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (s *NoteService) ListNotesByUser(db *database.Database, userID uuid.UUID) ([]models.Note, error) {
	notes := []models.Note{}
	if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func createNoteEvent(tx *gorm.DB, eventType broker.EventType, operation string, note models.Note) error {
	event, err := models.NewEvent(
		string(eventType),
		"note",
		operation,
		note.UserID.String(),
		map[string]interface{}{
			"note_id": note.ID.String(),
			"user_id": note.UserID.String(),
			"title":   note.Title,
		},
	)
	if err != nil {
		return err
	}
	return tx.Create(event).Error
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func toStringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func parseReminder(v interface{}) (*time.Time, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case string:
		if value == "" {
			return nil, nil
		}
		ts, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, err
		}
		ts = ts.UTC()
		return &ts, nil
	default:
		return nil, fmt.Errorf("unsupported reminder value %v", v)
	}
}

// NewNoteService creates a new instance of NoteService
func NewNoteService() NoteServiceInterface {
	return &NoteService{}
}

var NoteServiceInstance NoteServiceInterface = NewNoteService()
