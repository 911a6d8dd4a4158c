// internal/handlers/notification.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"shoplink-push/internal/models"
	"shoplink-push/internal/services"
	"shoplink-push/internal/store"
	"shoplink-push/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type NotificationHandler struct {
	tokens       services.TokenDirectory
	alertService *services.AdminAlertService
}

type RegisterDeviceRequest struct {
	Token       string `json:"token" binding:"omitempty"`
	Platform    string `json:"platform" binding:"required,oneof=ios android web"`
	DeviceModel string `json:"device_model"`
}

func NewNotificationHandler(tokens services.TokenDirectory, alertService *services.AdminAlertService) *NotificationHandler {
	return &NotificationHandler{
		tokens:       tokens,
		alertService: alertService,
	}
}

// RegisterDevice merge-upserts the caller's device token row. The role is
// snapshotted from the caller's JWT at sync time, not looked up at dispatch.
// An absent token still registers the device: registration may have failed
// on the client, and the row records that state.
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if req.Token != "" && !validator.IsPushToken(req.Token) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Malformed push token",
		})
		return
	}

	userID := c.GetString("user_id")
	roleStr := c.GetString("role")
	role, ok := models.RoleFromString(roleStr)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user role",
		})
		return
	}

	upd := store.TokenUpdate{Role: &role}
	if req.Token != "" {
		upd.Token = &req.Token
	}
	if req.Platform != "" {
		upd.Platform = &req.Platform
	}
	if req.DeviceModel != "" {
		upd.DeviceModel = &req.DeviceModel
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.tokens.Sync(ctx, userID, upd); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error registering device token",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Device token registered successfully",
	})
}

// GetAlerts returns the admin alert feed, newest first, with each alert's
// read flag resolved for the caller
func (h *NotificationHandler) GetAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alerts, err := h.alertService.Alerts(ctx, int64(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error fetching alerts",
			"details": err.Error(),
		})
		return
	}

	type alertView struct {
		models.AdminAlertRecord
		Read bool `json:"read"`
	}

	views := make([]alertView, 0, len(alerts))
	unread := 0
	for _, alert := range alerts {
		read := alert.ReadByUser(userID)
		if !read {
			unread++
		}
		views = append(views, alertView{AdminAlertRecord: alert, Read: read})
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts":       views,
		"unread_count": unread,
	})
}

// MarkAlertRead records that the caller viewed the alert
func (h *NotificationHandler) MarkAlertRead(c *gin.Context) {
	alertID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid alert ID",
		})
		return
	}

	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.alertService.MarkAlertRead(ctx, alertID, userID); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Alert not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Error marking alert as read",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Alert marked as read",
	})
}
