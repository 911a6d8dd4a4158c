// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"shoplink-push/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	log.Printf("Connected to MongoDB: %s", cfg.DatabaseName)

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	log.Println("Disconnected from MongoDB")
	return nil
}

// CreateIndexes creates indexes for all collections.
// NOTE: bson.D is used instead of a map to keep key order stable.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	// Users directory (read-only mirror of the identity service)
	userCollection := m.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	}

	if _, err := userCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	// Device tokens: _id is the user id, so uniqueness per user is implicit.
	// The role index backs the admin-alert fan-out filter.
	deviceTokenCollection := m.Database.Collection("device_tokens")
	deviceTokenIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
	}

	if _, err := deviceTokenCollection.Indexes().CreateMany(ctx, deviceTokenIndexes); err != nil {
		return fmt.Errorf("failed to create device token indexes: %w", err)
	}

	// Broadcast records
	broadcastCollection := m.Database.Collection("broadcasts")
	broadcastIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}

	if _, err := broadcastCollection.Indexes().CreateMany(ctx, broadcastIndexes); err != nil {
		return fmt.Errorf("failed to create broadcast indexes: %w", err)
	}

	// Admin alert records
	alertCollection := m.Database.Collection("admin_alerts")
	alertIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "type", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "read_by", Value: 1}},
		},
	}

	if _, err := alertCollection.Indexes().CreateMany(ctx, alertIndexes); err != nil {
		return fmt.Errorf("failed to create admin alert indexes: %w", err)
	}

	// Ledger snapshots are keyed by the per-user storage key (_id), only the
	// freshness index is needed.
	ledgerCollection := m.Database.Collection("ledger_snapshots")
	ledgerIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "updated_at", Value: -1}},
		},
	}

	if _, err := ledgerCollection.Indexes().CreateMany(ctx, ledgerIndexes); err != nil {
		return fmt.Errorf("failed to create ledger snapshot indexes: %w", err)
	}

	log.Println("Indexes created for all collections")
	return nil
}
