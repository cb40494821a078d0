package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	actorID := uuid.New().String()
	event, err := NewEvent("note.created", "note", "create", actorID, map[string]interface{}{
		"note_id": "abc",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "note.created", event.Event)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "note", event.Entity)
	assert.Equal(t, "create", event.Operation)
	assert.Equal(t, actorID, event.ActorID)
	assert.False(t, event.Dispatched)
	assert.Nil(t, event.DispatchedAt)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, "abc", data["note_id"])
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("note.created", "note", "create", "actor", make(chan int))
	assert.Error(t, err)
}
