package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LedgerStore is the per-user key-value persistence backing the local
// notification ledger: one JSON blob per deterministic per-user key.
type LedgerStore struct {
	collection *mongo.Collection
}

func NewLedgerStore(collection *mongo.Collection) *LedgerStore {
	return &LedgerStore{collection: collection}
}

type ledgerSnapshot struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Load returns the stored blob for key, or nil when none exists
func (s *LedgerStore) Load(ctx context.Context, key string) ([]byte, error) {
	var snapshot ledgerSnapshot
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	return snapshot.Data, nil
}

// Save upserts the blob for key
func (s *LedgerStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.collection.UpdateOne(
		ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{
			"data":       data,
			"updated_at": time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger snapshot: %w", err)
	}
	return nil
}
