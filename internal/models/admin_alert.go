package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin alert types
const (
	AlertTypeOrder  = "order"
	AlertTypeUser   = "user"
	AlertTypeSystem = "system"
)

// AdminAlertRecord is persisted once per administrative event, independently
// of the push fan-out, so the in-app admin feed shows the alert even when no
// device was reachable. ReadBy grows monotonically as admins view the feed.
type AdminAlertRecord struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	Type      string                 `bson:"type" json:"type"`
	Title     string                 `bson:"title" json:"title"`
	Body      string                 `bson:"body" json:"body"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	ReadBy    []string               `bson:"read_by" json:"read_by"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

// ReadByUser reports whether the given user already acknowledged the alert
func (a AdminAlertRecord) ReadByUser(userID string) bool {
	for _, id := range a.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
