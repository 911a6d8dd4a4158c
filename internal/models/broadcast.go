package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Broadcast statuses
const (
	BroadcastStatusPending = "pending"
	BroadcastStatusSent    = "sent"
)

// BroadcastRecord is persisted once per dispatched broadcast. It is created
// with status=pending before fan-out begins and flipped to sent after the
// batched gateway call returns. A record stuck in pending marks a broadcast
// whose gateway call failed.
type BroadcastRecord struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	Title     string                 `bson:"title" json:"title"`
	Body      string                 `bson:"body" json:"body"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Status    string                 `bson:"status" json:"status"`
	SentAt    *time.Time             `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}
