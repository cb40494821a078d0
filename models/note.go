package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultNoteColor is applied when a note is created without a color.
const DefaultNoteColor = "bg-yellow-300"

type Note struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `gorm:"not null" json:"content"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	Color       string     `gorm:"not null" json:"color"`
	IsFavorite  bool       `gorm:"not null;default:false" json:"isFavorite"`
	IsTask      bool       `gorm:"not null;default:false" json:"isTask"`
	IsCompleted bool       `gorm:"not null;default:false" json:"isCompleted"`
	Reminder    *time.Time `json:"reminder,omitempty"`
	Highlights  []string   `gorm:"serializer:json" json:"highlights"`
	Images      []string   `gorm:"serializer:json" json:"images"`
	URLs        []string   `gorm:"serializer:json" json:"urls"`
}

func (n *Note) FromJSON(data []byte) error {
	return json.Unmarshal(data, n)
}

func (n *Note) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
