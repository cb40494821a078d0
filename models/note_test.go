package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNoteToJSON(t *testing.T) {
	reminder := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	note := Note{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Title:      "Test Title",
		Content:    "Test Content",
		CreatedAt:  time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Color:      DefaultNoteColor,
		IsTask:     true,
		Reminder:   &reminder,
		Highlights: []string{"one", "two"},
	}

	data, err := note.ToJSON()
	assert.NoError(t, err)

	var result Note
	err = json.Unmarshal(data, &result)
	assert.NoError(t, err)
	assert.Equal(t, note, result)
}

func TestNoteFromJSON(t *testing.T) {
	data := `{
		"id": "550e8400-e29b-41d4-a716-446655440000",
		"user": "550e8400-e29b-41d4-a716-446655440001",
		"title": "Test Title",
		"content": "Test Content",
		"color": "bg-yellow-300",
		"isFavorite": true,
		"highlights": ["h1"],
		"urls": ["https://example.com"]
	}`

	var note Note
	err := note.FromJSON([]byte(data))
	assert.NoError(t, err)
	assert.Equal(t, "Test Title", note.Title)
	assert.Equal(t, "Test Content", note.Content)
	assert.Equal(t, uuid.MustParse("550e8400-e29b-41d4-a716-446655440001"), note.UserID)
	assert.True(t, note.IsFavorite)
	assert.False(t, note.IsTask)
	assert.Nil(t, note.Reminder)
	assert.Equal(t, []string{"h1"}, note.Highlights)
	assert.Equal(t, []string{"https://example.com"}, note.URLs)
}
