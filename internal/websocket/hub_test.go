package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cleberrangel/diane-api/internal/capture"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// drainWelcomeMessage drains the welcome message sent during client registration
func drainWelcomeMessage(client *Client) {
	select {
	case <-client.Send:
	case <-time.After(100 * time.Millisecond):
	}
}

func newTestClient(hub *Hub, userID string, buffer int) *Client {
	client := &Client{
		UserID:      userID,
		Send:        make(chan []byte, buffer),
		Hub:         hub,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}
	hub.RegisterClient(client)
	drainWelcomeMessage(client)
	return client
}

func decode(t *testing.T, raw []byte) Message {
	t.Helper()
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("invalid message %s: %v", raw, err)
	}
	return msg
}

// For any notification, every connection of the user receives it unchanged
// and other users receive nothing.
func TestNotificationDelivery(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("notifications reach only the owner", prop.ForAll(
		func(connections int, text string) bool {
			hub := NewHub(nil)
			clients := make([]*Client, connections)
			for i := range clients {
				clients[i] = newTestClient(hub, "1", 4)
			}
			other := newTestClient(hub, "2", 4)

			n := capture.SuccessNotification(capture.Classify(text))
			if err := hub.Notify(context.Background(), "1", n); err != nil {
				return false
			}

			for _, c := range clients {
				select {
				case raw := <-c.Send:
					var msg struct {
						Type string               `json:"type"`
						Data capture.Notification `json:"data"`
					}
					if json.Unmarshal(raw, &msg) != nil {
						return false
					}
					if msg.Type != TypeNotification || msg.Data.Message != n.Message || msg.Data.DurationMs != n.DurationMs {
						return false
					}
				default:
					return false
				}
			}

			select {
			case <-other.Send:
				return false
			default:
				return true
			}
		},
		gen.IntRange(1, 5),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestPublishCaptureState(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "9", 4)

	hub.PublishCaptureState("9", capture.StateSubmitting, "buy milk")

	raw := <-client.Send
	var msg struct {
		Type string `json:"type"`
		Data struct {
			State string `json:"state"`
			Input string `json:"input"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("invalid message: %v", err)
	}
	if msg.Type != TypeCaptureState || msg.Data.State != "submitting" || msg.Data.Input != "buy milk" {
		t.Errorf("unexpected message: %s", raw)
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "3", 1)

	if got := hub.SendToUser("3", Message{Type: "a"}); got != 1 {
		t.Fatalf("first message delivered to %d clients", got)
	}
	if got := hub.SendToUser("3", Message{Type: "b"}); got != 0 {
		t.Fatalf("full client should not receive, got %d", got)
	}
	if hub.GetUserConnectionCount("3") != 0 {
		t.Error("full client should be unregistered")
	}

	<-client.Send
	if _, ok := <-client.Send; ok {
		t.Error("send channel should be closed")
	}

	// Sending after removal must not panic
	client.SendMessage(Message{Type: "late"})
	hub.UnregisterClient(client)
}

func TestConnectionCounts(t *testing.T) {
	hub := NewHub(nil)
	a := newTestClient(hub, "1", 2)
	newTestClient(hub, "1", 2)
	newTestClient(hub, "2", 2)

	if hub.GetConnectionCount() != 3 || hub.GetUserConnectionCount("1") != 2 {
		t.Fatalf("unexpected counts: total=%d user1=%d", hub.GetConnectionCount(), hub.GetUserConnectionCount("1"))
	}
	if len(hub.GetConnectedUsers()) != 2 {
		t.Errorf("expected 2 users, got %v", hub.GetConnectedUsers())
	}

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	if hub.GetUserConnectionCount("1") != 1 {
		t.Errorf("expected 1 connection left, got %d", hub.GetUserConnectionCount("1"))
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com/"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if !check(req) {
		t.Error("requests without Origin are allowed")
	}
	req.Header.Set("Origin", "https://app.example.com")
	if !check(req) {
		t.Error("configured origin should be allowed")
	}
	req.Header.Set("Origin", "https://evil.example.com")
	if check(req) {
		t.Error("unknown origin should be rejected")
	}
	if !originChecker([]string{"*"})(req) {
		t.Error("wildcard should allow any origin")
	}
}

func TestServeWSEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := middleware.NewSessionStore(middleware.SessionConfig{SessionDuration: time.Hour})
	defer store.Stop()
	token, _, err := store.Create(model.User{ID: 5, Email: "ws@example.com"})
	if err != nil {
		t.Fatalf("Create session failed: %v", err)
	}

	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	router := gin.New()
	router.GET("/ws", store.RequireSession(), hub.ServeWS)
	server := httptest.NewServer(router)
	defer server.Close()

	url := BuildWebSocketURL("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", token)
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading welcome failed: %v", err)
	}
	if msg := decode(t, raw); msg.Type != TypeConnection {
		t.Fatalf("expected welcome message, got %s", raw)
	}

	hub.Notify(context.Background(), "5", capture.FailureNotification())
	_, raw, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading notification failed: %v", err)
	}
	if msg := decode(t, raw); msg.Type != TypeNotification {
		t.Errorf("expected notification, got %s", raw)
	}

	if err := conn.WriteMessage(gorilla.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping failed: %v", err)
	}
	_, raw, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading pong failed: %v", err)
	}
	if msg := decode(t, raw); msg.Type != TypePong {
		t.Errorf("expected pong, got %s", raw)
	}
}

func TestServeWSRequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)

	router := gin.New()
	router.GET("/ws", hub.ServeWS)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func ExampleBuildWebSocketURL() {
	fmt.Println(BuildWebSocketURL("ws://localhost:8080/api/ws", "abc"))
	// Output: ws://localhost:8080/api/ws?token=abc
}

func TestFromHTTPURL(t *testing.T) {
	tests := []struct {
		api, path, want string
	}{
		{"http://localhost:8080", "/api/ws", "ws://localhost:8080/api/ws"},
		{"https://diane.example.com/", "/api/ws", "wss://diane.example.com/api/ws"},
		{"https://diane.example.com/v1", "/api/ws", "wss://diane.example.com/v1/api/ws"},
	}
	for _, tt := range tests {
		if got := FromHTTPURL(tt.api, tt.path); got != tt.want {
			t.Errorf("FromHTTPURL(%q, %q) = %q, want %q", tt.api, tt.path, got, tt.want)
		}
	}
}
