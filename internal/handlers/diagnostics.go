// internal/handlers/diagnostics.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"shoplink-push/internal/services"
	"shoplink-push/pkg/validator"

	"github.com/gin-gonic/gin"
)

type DiagnosticsHandler struct {
	diagnostics *services.DiagnosticsService
}

type TestSendRequest struct {
	Token string `json:"token" binding:"required"`
	Title string `json:"title" binding:"required,max=100"`
	Body  string `json:"body" binding:"required,max=500"`
}

func NewDiagnosticsHandler(diagnostics *services.DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnostics: diagnostics}
}

// Reachability returns how many device rows a broadcast would address
func (h *DiagnosticsHandler) Reachability(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := h.diagnostics.ReachabilityCount(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error counting device tokens",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reachable_devices": count,
	})
}

// TokenHealth reports whether a user is correctly enrolled for admin alerts
func (h *DiagnosticsHandler) TokenHealth(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "User ID is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := h.diagnostics.CheckAdminTokenHealth(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error checking token health",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  health.Status,
		"message": health.Message,
	})
}

// TestSend submits one message to one token and relays the gateway's own
// verdict. Always answers 200 with a structured result: this is a debug
// tool and its failures are data, not errors.
func (h *DiagnosticsHandler) TestSend(c *gin.Context) {
	var req TestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if !validator.IsPushToken(req.Token) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Malformed push token",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result := h.diagnostics.SendTestNotification(ctx, req.Token, req.Title, req.Body)

	c.JSON(http.StatusOK, result)
}
