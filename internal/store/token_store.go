package store

import (
	"context"
	"fmt"
	"time"

	"shoplink-push/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenUpdate carries the fields of a token sync. Nil fields are left
// untouched in the stored row, so a partial update can never destroy
// metadata it did not intend to write.
type TokenUpdate struct {
	Token       *string
	Role        *models.Role
	Platform    *string
	DeviceModel *string
}

// TokenStore is the durable user-id -> device token mapping. The user id is
// the document key, writes are merge-upserts and rows are never deleted; a
// stale token is identified by diagnostics, not removed.
type TokenStore struct {
	collection *mongo.Collection
}

func NewTokenStore(collection *mongo.Collection) *TokenStore {
	return &TokenStore{collection: collection}
}

// Sync merge-upserts the row for userID. Idempotent: repeating a sync with
// identical fields only refreshes updated_at.
func (s *TokenStore) Sync(ctx context.Context, userID string, upd TokenUpdate) error {
	set := bson.M{"updated_at": time.Now()}
	if upd.Token != nil {
		set["token"] = *upd.Token
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.Platform != nil {
		set["platform"] = *upd.Platform
	}
	if upd.DeviceModel != nil {
		set["device_model"] = *upd.DeviceModel
	}

	_, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to sync device token: %w", err)
	}
	return nil
}

// Get returns the row for userID, or nil when none exists
func (s *TokenStore) Get(ctx context.Context, userID string) (*models.DeviceToken, error) {
	var token models.DeviceToken
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&token)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device token: %w", err)
	}
	return &token, nil
}

// All returns every row with a usable token
func (s *TokenStore) All(ctx context.Context) ([]models.DeviceToken, error) {
	return s.find(ctx, bson.M{"token": bson.M{"$exists": true, "$ne": ""}})
}

// ByRoles returns rows with a usable token whose cached role is in roles
func (s *TokenStore) ByRoles(ctx context.Context, roles []models.Role) ([]models.DeviceToken, error) {
	return s.find(ctx, bson.M{
		"token": bson.M{"$exists": true, "$ne": ""},
		"role":  bson.M{"$in": roles},
	})
}

// ByUserIDs returns rows with a usable token for the given user ids
func (s *TokenStore) ByUserIDs(ctx context.Context, ids []string) ([]models.DeviceToken, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{
		"_id":   bson.M{"$in": ids},
		"token": bson.M{"$exists": true, "$ne": ""},
	})
}

// Count returns the total row count without fetching documents
func (s *TokenStore) Count(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count device tokens: %w", err)
	}
	return count, nil
}

func (s *TokenStore) find(ctx context.Context, filter bson.M) ([]models.DeviceToken, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer cursor.Close(ctx)

	var tokens []models.DeviceToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode device tokens: %w", err)
	}
	return tokens, nil
}
