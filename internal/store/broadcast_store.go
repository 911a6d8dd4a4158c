package store

import (
	"context"
	"fmt"
	"time"

	"shoplink-push/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BroadcastStore persists one record per dispatched broadcast
type BroadcastStore struct {
	collection *mongo.Collection
}

func NewBroadcastStore(collection *mongo.Collection) *BroadcastStore {
	return &BroadcastStore{collection: collection}
}

// Create inserts a pending record and fills in its id
func (s *BroadcastStore) Create(ctx context.Context, record *models.BroadcastRecord) error {
	record.Status = models.BroadcastStatusPending
	record.CreatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to save broadcast record: %w", err)
	}
	record.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// MarkSent flips the record to sent and stamps sent_at
func (s *BroadcastStore) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":  models.BroadcastStatusSent,
			"sent_at": now,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark broadcast as sent: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first
func (s *BroadcastStore) List(ctx context.Context, limit int64) ([]models.BroadcastRecord, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query broadcast records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.BroadcastRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode broadcast records: %w", err)
	}
	return records, nil
}
