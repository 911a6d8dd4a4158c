package handlers

import (
	"net/http"

	"shoplink-push/internal/models"
	ws "shoplink-push/internal/websocket"
	"shoplink-push/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is validated by the CORS layer in front of this
		return true
	},
}

// WebSocketHandler upgrades elevated-role dashboard clients onto the live
// admin alert feed
type WebSocketHandler struct {
	hub        *ws.Hub
	jwtManager *auth.JWTManager
}

func NewWebSocketHandler(hub *ws.Hub, jwtManager *auth.JWTManager) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		jwtManager: jwtManager,
	}
}

// HandleWebSocket authenticates via the token query parameter (browsers
// cannot set headers on websocket upgrades), requires an elevated role, and
// attaches the client to the hub.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Token is required",
		})
		return
	}

	claims, err := h.jwtManager.ValidateToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	role, ok := models.RoleFromString(claims.Role)
	if !ok || !role.IsElevated() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Elevated role required",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}

	client := h.hub.NewClient(conn, claims.UserID)
	go client.WritePump()
	go client.ReadPump()
}
