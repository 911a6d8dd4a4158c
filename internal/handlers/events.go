// internal/handlers/events.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shoplink-push/internal/models"
	"shoplink-push/internal/services"

	"github.com/gin-gonic/gin"
)

// EventsHandler relays domain events from the rest of the shop into the
// alert pipeline. The e-commerce flow itself lives elsewhere; this endpoint
// only exists so order placement can notify the admin staff.
type EventsHandler struct {
	alertService *services.AdminAlertService
}

type OrderPlacedRequest struct {
	OrderID  string  `json:"order_id" binding:"required"`
	Total    float64 `json:"total" binding:"required,gt=0"`
	Currency string  `json:"currency" binding:"omitempty,len=3"`
}

func NewEventsHandler(alertService *services.AdminAlertService) *EventsHandler {
	return &EventsHandler{alertService: alertService}
}

// OrderPlaced acknowledges immediately and triggers the admin alert in the
// background: alert delivery must never block or fail the order flow.
func (h *EventsHandler) OrderPlaced(c *gin.Context) {
	var req OrderPlacedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		h.alertService.TriggerAdminAlert(
			ctx,
			models.AlertTypeOrder,
			"New order",
			fmt.Sprintf("Order #%s placed for %.2f %s", req.OrderID, req.Total, currency),
			map[string]interface{}{
				"order_id": req.OrderID,
				"total":    req.Total,
				"currency": currency,
			},
		)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Order event accepted",
	})
}

type TriggerAlertRequest struct {
	Type  string                 `json:"type" binding:"required,oneof=order user system"`
	Title string                 `json:"title" binding:"required,max=100"`
	Body  string                 `json:"body" binding:"required,max=500"`
	Data  map[string]interface{} `json:"data"`
}

// TriggerAlert lets admins raise an alert by hand, e.g. maintenance notices.
func (h *EventsHandler) TriggerAlert(c *gin.Context) {
	var req TriggerAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	h.alertService.TriggerAdminAlert(ctx, req.Type, req.Title, req.Body, req.Data)

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert triggered",
	})
}
