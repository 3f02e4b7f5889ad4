package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cleberrangel/diane-api/internal/capture"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message types pushed to clients
const (
	TypeConnection   = "connection"
	TypeNotification = "notification"
	TypeCaptureState = "capture_state"
	TypePong         = "pong"
)

// Hub maintains the set of active clients and delivers messages to them
type Hub struct {
	// Registered clients by user ID
	clients map[string]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	quit     chan struct{}
	quitOnce sync.Once

	// Mutex for thread-safe operations
	mutex sync.RWMutex

	upgrader websocket.Upgrader

	// Logger
	logger *zerolog.Logger
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	// User identification
	UserID    string
	SessionID string

	// Hub reference
	Hub *Hub

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time

	closeOnce sync.Once
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// CaptureState is the payload of capture_state messages
type CaptureState struct {
	State capture.State `json:"state"`
	Input string        `json:"input"`
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBufferSize = 256
)

// NewHub creates a new WebSocket hub accepting upgrades from allowedOrigins.
// An empty list or "*" accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.Global(),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(origin, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(set) == 0 || set[origin]
	}
}

// Run starts the hub's main loop until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.quit:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every connection
func (h *Hub) Stop() {
	h.quitOnce.Do(func() { close(h.quit) })
}

// registerClient registers a new client
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	count := len(h.clients[client.UserID])
	h.mutex.Unlock()

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("user_id", client.UserID).
		Int("user_connections", count).
		Msg("WebSocket client registered")

	client.SendMessage(Message{
		Type:      TypeConnection,
		Data:      map[string]string{"status": "connected"},
		Timestamp: time.Now(),
	})
}

// unregisterClient unregisters a client
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. Callers hold the write lock.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.UserID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	client.closeSend()
	metrics.Get().DecrementWSConnection()

	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}

	h.logger.Info().
		Str("user_id", client.UserID).
		Int("remaining_connections", len(clients)).
		Msg("WebSocket client unregistered")
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// SendToUser sends a message to all connections of a specific user and
// reports how many received it. Clients whose buffer is full are dropped.
func (h *Hub) SendToUser(userID string, message interface{}) int {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("Failed to marshal message for user")
		return 0
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	delivered := 0
	for client := range h.clients[userID] {
		select {
		case client.Send <- data:
			metrics.Get().IncrementWSMessageOut()
			delivered++
		default:
			h.logger.Warn().
				Str("user_id", userID).
				Msg("Failed to send message to user client, closing connection")
			h.removeLocked(client)
		}
	}

	if delivered == 0 {
		h.logger.Debug().
			Str("user_id", userID).
			Msg("No WebSocket connections found for user")
	}
	return delivered
}

// Notify pushes a capture notification to the user's connections.
// Users without connections are not an error.
func (h *Hub) Notify(_ context.Context, userID string, n capture.Notification) error {
	h.SendToUser(userID, Message{
		Type:      TypeNotification,
		Data:      n,
		Timestamp: time.Now(),
	})
	return nil
}

// PublishCaptureState pushes the capture form state to the user's connections
func (h *Hub) PublishCaptureState(userID string, state capture.State, input string) {
	h.SendToUser(userID, Message{
		Type:      TypeCaptureState,
		Data:      CaptureState{State: state, Input: input},
		Timestamp: time.Now(),
	})
}

// GetConnectedUsers returns a list of currently connected user IDs
func (h *Hub) GetConnectedUsers() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	users := make([]string, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

// GetUserConnectionCount returns the number of connections for a specific user
func (h *Hub) GetUserConnectionCount(userID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}

// RegisterClient registers a client synchronously (used by tests)
func (h *Hub) RegisterClient(client *Client) {
	h.registerClient(client)
}

// UnregisterClient unregisters a client synchronously (used by tests)
func (h *Hub) UnregisterClient(client *Client) {
	h.unregisterClient(client)
}
