package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"lumen-notes/lumen/broker"
	"lumen-notes/lumen/database"
	"lumen-notes/lumen/models"
)

type EventDispatcherInterface interface {
	Start()
	Stop()
	DispatchPending() error
}

// EventDispatcher drains the outbox: it polls for undispatched event rows,
// publishes them to the broker, and marks them dispatched.
type EventDispatcher struct {
	db        *database.Database
	publisher broker.PublisherInterface
	interval  time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
	started   bool
}

func NewEventDispatcher(db *database.Database, publisher broker.PublisherInterface, pollInterval time.Duration) *EventDispatcher {
	return &EventDispatcher{
		db:        db,
		publisher: publisher,
		interval:  pollInterval,
		stopChan:  make(chan struct{}),
	}
}

func (s *EventDispatcher) Start() {
	if s.started {
		return
	}
	if s.publisher == nil {
		log.Println("Event dispatcher disabled: no broker connection")
		return
	}
	s.started = true
	go s.run()
}

// Stop terminates the polling goroutine. Safe to call more than once.
func (s *EventDispatcher) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *EventDispatcher) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.DispatchPending(); err != nil {
				log.Printf("Error dispatching events: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// DispatchPending publishes every undispatched event row. Rows that fail to
// publish stay pending and are retried on the next tick.
func (s *EventDispatcher) DispatchPending() error {
	var events []models.Event
	if err := s.db.DB.Where("dispatched = ?", false).Order("timestamp ASC").Find(&events).Error; err != nil {
		return err
	}

	for _, event := range events {
		if err := s.dispatchEvent(event); err != nil {
			log.Printf("Error dispatching event %s: %v", event.ID, err)
		}
	}
	return nil
}

func (s *EventDispatcher) dispatchEvent(event models.Event) error {
	var dataMap map[string]interface{}
	if err := json.Unmarshal(event.Data, &dataMap); err != nil {
		log.Printf("Warning: Could not unmarshal event data: %v", err)
		dataMap = make(map[string]interface{})
	}

	payload := map[string]interface{}{
		"type": event.Event,
		"payload": map[string]interface{}{
			"event_id":  event.ID.String(),
			"timestamp": event.Timestamp,
			"entity":    event.Entity,
			"operation": event.Operation,
			"actor_id":  event.ActorID,
			"data":      dataMap,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// The event name doubles as the NATS subject, so consumers can
	// subscribe per entity with a wildcard (note.*, user.*).
	if err := s.publisher.Publish(event.Event, jsonData); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.db.DB.Model(&event).Updates(map[string]interface{}{
		"dispatched":    true,
		"dispatched_at": now,
	}).Error
}

var EventDispatcherInstance EventDispatcherInterface
