package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"lumen-notes/lumen/models"
	"lumen-notes/lumen/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakePublisher) published() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subjects)
}

func TestDispatchPending(t *testing.T) {
	db := testutils.SetupTestDB(t)
	publisher := &fakePublisher{}
	dispatcher := NewEventDispatcher(db, publisher, time.Second)

	noteService := &NoteService{}
	userID := uuid.New()
	note, err := noteService.CreateNote(db, userID, map[string]interface{}{
		"title":   "Groceries",
		"content": "milk, eggs",
	})
	require.NoError(t, err)

	require.NoError(t, dispatcher.DispatchPending())

	require.Len(t, publisher.subjects, 1)
	assert.Equal(t, "note.created", publisher.subjects[0])

	var envelope struct {
		Type    string `json:"type"`
		Payload struct {
			Entity string `json:"entity"`
			Data   struct {
				NoteID string `json:"note_id"`
				UserID string `json:"user_id"`
			} `json:"data"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &envelope))
	assert.Equal(t, "note.created", envelope.Type)
	assert.Equal(t, "note", envelope.Payload.Entity)
	assert.Equal(t, note.ID.String(), envelope.Payload.Data.NoteID)
	assert.Equal(t, userID.String(), envelope.Payload.Data.UserID)

	var pending int64
	require.NoError(t, db.DB.Model(&models.Event{}).Where("dispatched = ?", false).Count(&pending).Error)
	assert.Equal(t, int64(0), pending)

	// A second pass finds nothing new to publish.
	require.NoError(t, dispatcher.DispatchPending())
	assert.Len(t, publisher.subjects, 1)
}

func TestDispatchPending_PublishFailureKeepsEventPending(t *testing.T) {
	db := testutils.SetupTestDB(t)
	publisher := &fakePublisher{err: assert.AnError}
	dispatcher := NewEventDispatcher(db, publisher, time.Second)

	noteService := &NoteService{}
	_, err := noteService.CreateNote(db, uuid.New(), map[string]interface{}{
		"title":   "Groceries",
		"content": "milk, eggs",
	})
	require.NoError(t, err)

	require.NoError(t, dispatcher.DispatchPending())

	var pending int64
	require.NoError(t, db.DB.Model(&models.Event{}).Where("dispatched = ?", false).Count(&pending).Error)
	assert.Equal(t, int64(1), pending)

	// Once the broker recovers the retry succeeds.
	publisher.err = nil
	require.NoError(t, dispatcher.DispatchPending())
	require.NoError(t, db.DB.Model(&models.Event{}).Where("dispatched = ?", false).Count(&pending).Error)
	assert.Equal(t, int64(0), pending)
}

func TestDispatcherStopEndsPolling(t *testing.T) {
	db := testutils.SetupTestDB(t)
	publisher := &fakePublisher{}
	dispatcher := NewEventDispatcher(db, publisher, 5*time.Millisecond)

	noteService := &NoteService{}
	userID := uuid.New()
	_, err := noteService.CreateNote(db, userID, map[string]interface{}{
		"title":   "Groceries",
		"content": "milk, eggs",
	})
	require.NoError(t, err)

	dispatcher.Start()
	require.Eventually(t, func() bool {
		return publisher.published() == 1
	}, time.Second, 5*time.Millisecond)

	dispatcher.Stop()
	dispatcher.Stop()

	// Give any tick already in flight time to finish before queueing
	// another event.
	time.Sleep(30 * time.Millisecond)
	_, err = noteService.CreateNote(db, userID, map[string]interface{}{
		"title":   "Chores",
		"content": "laundry",
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, publisher.published())
}
