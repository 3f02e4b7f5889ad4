package handler

import (
	"net/http"

	"github.com/cleberrangel/diane-api/internal/model"
	"github.com/cleberrangel/diane-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler handles WebSocket-related HTTP requests
type WebSocketHandler struct {
	hub *websocket.Hub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// HandleConnection upgrades the request; the session comes from RequireSession
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	h.hub.ServeWS(c)
}

// GetConnectionStats returns WebSocket connection statistics
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data: map[string]interface{}{
			"total_connections": h.hub.GetConnectionCount(),
			"connected_users":   len(h.hub.GetConnectedUsers()),
		},
	})
}

// GetUserConnections returns connection information for the current user
func (h *WebSocketHandler) GetUserConnections(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	connectionCount := h.hub.GetUserConnectionCount(session.UserKey())

	respondOK(c, http.StatusOK, map[string]interface{}{
		"user_id":          session.UserID,
		"connection_count": connectionCount,
		"is_connected":     connectionCount > 0,
	})
}
