package services

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"lumen-notes/lumen/broker"
	"lumen-notes/lumen/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// WebSocketServiceInterface defines the operations provided by the WebSocket service
type WebSocketServiceInterface interface {
	Start(cfg config.Config)
	Stop()
	HandleConnection(c *gin.Context)
	SetEventChannel(ch <-chan *nats.Msg)
}

// Client represents a connected WebSocket client
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// WebSocketService fans note events out to the connections of the owning user.
type WebSocketService struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client

	upgrader websocket.Upgrader
	consumer *broker.Consumer

	events     chan *nats.Msg
	eventInput <-chan *nats.Msg

	isRunning bool
	stopChan  chan struct{}
}

func NewWebSocketService() WebSocketServiceInterface {
	return &WebSocketService{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		events:   make(chan *nats.Msg, 256),
		stopChan: make(chan struct{}),
	}
}

// SetEventChannel allows feeding events from a custom channel - useful for testing
func (ws *WebSocketService) SetEventChannel(ch <-chan *nats.Msg) {
	ws.eventInput = ch
}

func (ws *WebSocketService) Start(cfg config.Config) {
	if ws.isRunning {
		return
	}
	ws.isRunning = true

	go ws.run()

	if ws.eventInput != nil {
		go ws.forwardEvents(ws.eventInput)
		return
	}

	consumer, err := broker.InitConsumer(cfg, []string{broker.NoteEventsSubject}, "websocket-group")
	if err != nil {
		log.Printf("Failed to initialize event consumer: %v", err)
		log.Println("WebSocket service will run without realtime note events")
		return
	}
	ws.consumer = consumer
	go ws.forwardEvents(consumer.GetMessageChannel())
}

func (ws *WebSocketService) Stop() {
	if !ws.isRunning {
		return
	}
	ws.isRunning = false
	if ws.consumer != nil {
		ws.consumer.Close()
	}
	close(ws.stopChan)
}

func (ws *WebSocketService) forwardEvents(ch <-chan *nats.Msg) {
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ws.events <- msg
		case <-ws.stopChan:
			return
		}
	}
}

func (ws *WebSocketService) run() {
	for {
		select {
		case client := <-ws.register:
			ws.clients[client.ID] = client
			log.Printf("WebSocket client %s connected for user %s", client.ID, client.UserID)
		case client := <-ws.unregister:
			if _, ok := ws.clients[client.ID]; ok {
				delete(ws.clients, client.ID)
				close(client.Send)
			}
		case msg := <-ws.events:
			ws.deliver(msg.Data)
		case <-ws.stopChan:
			for _, client := range ws.clients {
				close(client.Send)
			}
			ws.clients = make(map[string]*Client)
			return
		}
	}
}

// deliver routes an event to the connections of the note's owner.
func (ws *WebSocketService) deliver(data []byte) {
	recipient := eventRecipient(data)
	if recipient == "" {
		return
	}
	for _, client := range ws.clients {
		if client.UserID != recipient {
			continue
		}
		select {
		case client.Send <- data:
		default:
			// Slow consumer, drop the connection.
			delete(ws.clients, client.ID)
			close(client.Send)
		}
	}
}

// eventRecipient extracts the owning user id from a dispatched event envelope.
func eventRecipient(data []byte) string {
	var envelope struct {
		Payload struct {
			Data struct {
				UserID string `json:"user_id"`
			} `json:"data"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		log.Printf("Could not parse event envelope: %v", err)
		return ""
	}
	return envelope.Payload.Data.UserID
}

// HandleConnection upgrades an authenticated request to a WebSocket connection.
func (ws *WebSocketService) HandleConnection(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	conn, err := ws.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: userID.String(),
		Conn:   conn,
		Send:   make(chan []byte, 64),
	}
	ws.register <- client

	go ws.writePump(client)
	go ws.readPump(client)
}

func (ws *WebSocketService) writePump(client *Client) {
	defer client.Conn.Close()
	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; the stream is one-way. It exists to
// detect closed connections and trigger unregistration.
func (ws *WebSocketService) readPump(client *Client) {
	defer func() {
		ws.unregister <- client
		client.Conn.Close()
	}()
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

var WebSocketServiceInstance WebSocketServiceInterface
