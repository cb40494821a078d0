package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventRecipient(t *testing.T) {
	data := []byte(`{
		"type": "note.updated",
		"payload": {
			"entity": "note",
			"data": {
				"note_id": "123e4567-e89b-12d3-a456-426614174000",
				"user_id": "90a12345-f12a-98c4-a456-513432930000"
			}
		}
	}`)

	assert.Equal(t, "90a12345-f12a-98c4-a456-513432930000", eventRecipient(data))
}

func TestEventRecipient_Malformed(t *testing.T) {
	assert.Equal(t, "", eventRecipient([]byte("not json")))
	assert.Equal(t, "", eventRecipient([]byte(`{"payload":{}}`)))
}

func TestDeliver_RoutesToOwnerOnly(t *testing.T) {
	ws := &WebSocketService{
		clients: map[string]*Client{},
	}
	owner := &Client{ID: "c1", UserID: "90a12345-f12a-98c4-a456-513432930000", Send: make(chan []byte, 1)}
	other := &Client{ID: "c2", UserID: "11111111-1111-1111-1111-111111111111", Send: make(chan []byte, 1)}
	ws.clients[owner.ID] = owner
	ws.clients[other.ID] = other

	data := []byte(`{"payload":{"data":{"user_id":"90a12345-f12a-98c4-a456-513432930000"}}}`)
	ws.deliver(data)

	select {
	case msg := <-owner.Send:
		assert.Equal(t, data, msg)
	default:
		t.Fatal("owner did not receive the event")
	}

	select {
	case <-other.Send:
		t.Fatal("event leaked to a client of another user")
	default:
	}
}
