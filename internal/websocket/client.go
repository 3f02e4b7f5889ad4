package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/middleware"
	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ServeWS upgrades the request of an authenticated session
func (h *Hub) ServeWS(c *gin.Context) {
	session := middleware.CurrentSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Success: false,
			Error:   "Not authenticated",
			Code:    "SESSION_NOT_FOUND",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", session.UserKey()).
			Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		conn:        conn,
		Send:        make(chan []byte, sendBufferSize),
		UserID:      session.UserKey(),
		SessionID:   session.ID,
		Hub:         h,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	select {
	case h.register <- client:
	case <-h.quit:
		conn.Close()
		return
	}

	logger.AuditWebSocket(c.Request.Context(), logger.AuditActionWSConnect, client.UserID, c.ClientIP(), nil)

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines
	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.quit:
		}
		c.conn.Close()
		logger.AuditWebSocket(context.Background(), logger.AuditActionWSDisconnect, c.UserID, "", map[string]interface{}{
			"connected_for_ms": time.Since(c.ConnectedAt).Milliseconds(),
		})
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.LastPing = time.Now()
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error().
					Err(err).
					Str("user_id", c.UserID).
					Msg("WebSocket connection closed unexpectedly")
			}
			break
		}

		metrics.Get().IncrementWSMessageIn()
		c.handleMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Warn().
			Err(err).
			Str("user_id", c.UserID).
			Msg("Failed to unmarshal client message")
		return
	}

	switch msg.Type {
	case "ping":
		c.SendMessage(Message{
			Type:      TypePong,
			Timestamp: time.Now(),
		})

	default:
		c.Hub.logger.Debug().
			Str("user_id", c.UserID).
			Str("message_type", msg.Type).
			Msg("Unknown message type received from client")
	}
}

// SendMessage queues a message for this client. Messages are dropped when the
// buffer is full.
func (c *Client) SendMessage(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.Hub.logger.Error().
			Err(err).
			Str("user_id", c.UserID).
			Msg("Failed to marshal message for client")
		return
	}

	c.Hub.mutex.RLock()
	defer c.Hub.mutex.RUnlock()
	if !c.Hub.clients[c.UserID][c] {
		return
	}

	select {
	case c.Send <- data:
		metrics.Get().IncrementWSMessageOut()
	default:
		c.Hub.logger.Warn().
			Str("user_id", c.UserID).
			Msg("Client send channel is full, dropping message")
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// GetConnectionInfo returns information about this client connection
func (c *Client) GetConnectionInfo() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      c.UserID,
		"session_id":   c.SessionID,
		"connected_at": c.ConnectedAt,
		"last_ping":    c.LastPing,
	}
}
