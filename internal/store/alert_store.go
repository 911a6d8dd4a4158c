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

// AlertStore persists one record per administrative event, separately from
// broadcast records
type AlertStore struct {
	collection *mongo.Collection
}

func NewAlertStore(collection *mongo.Collection) *AlertStore {
	return &AlertStore{collection: collection}
}

// Create inserts the alert record and fills in its id
func (s *AlertStore) Create(ctx context.Context, record *models.AdminAlertRecord) error {
	record.CreatedAt = time.Now()
	if record.ReadBy == nil {
		record.ReadBy = []string{}
	}

	result, err := s.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to save admin alert record: %w", err)
	}
	record.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// List returns the most recent alerts, newest first
func (s *AlertStore) List(ctx context.Context, limit int64) ([]models.AdminAlertRecord, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.AdminAlertRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode admin alerts: %w", err)
	}
	return records, nil
}

// MarkRead records that userID viewed the alert. read_by grows
// monotonically; acknowledging twice is a no-op.
func (s *AlertStore) MarkRead(ctx context.Context, alertID primitive.ObjectID, userID string) error {
	result, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": alertID},
		bson.M{"$addToSet": bson.M{"read_by": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark alert as read: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
