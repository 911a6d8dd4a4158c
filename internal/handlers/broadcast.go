// internal/handlers/broadcast.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shoplink-push/internal/services"

	"github.com/gin-gonic/gin"
)

type BroadcastHandler struct {
	broadcastService *services.BroadcastService
	diagnostics      *services.DiagnosticsService
}

type SendBroadcastRequest struct {
	Title string                 `json:"title" binding:"required,max=100"`
	Body  string                 `json:"body" binding:"required,max=500"`
	Data  map[string]interface{} `json:"data,omitempty"`
	Force bool                   `json:"force,omitempty"`
}

func NewBroadcastHandler(broadcastService *services.BroadcastService, diagnostics *services.DiagnosticsService) *BroadcastHandler {
	return &BroadcastHandler{
		broadcastService: broadcastService,
		diagnostics:      diagnostics,
	}
}

// SendBroadcast dispatches a message to every reachable device. When the
// reachability count is zero the send is blocked with a warning unless the
// caller passes force, so an operator notices an empty audience before
// burning a campaign.
func (h *BroadcastHandler) SendBroadcast(c *gin.Context) {
	var req SendBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !req.Force {
		count, err := h.diagnostics.ReachabilityCount(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Error checking reachability",
				"details": err.Error(),
			})
			return
		}
		if count == 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "No reachable devices",
				"warning": "No device tokens are registered; the broadcast would reach nobody. Pass force=true to send anyway.",
			})
			return
		}
	}

	result, err := h.broadcastService.SendBroadcast(ctx, req.Title, req.Body, req.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error sending broadcast",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"count":   result.Count,
	})
}

// ListBroadcasts returns recent broadcast records, newest first
func (h *BroadcastHandler) ListBroadcasts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := h.broadcastService.Broadcasts(ctx, int64(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error fetching broadcasts",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"broadcasts": records,
	})
}
