package store

import (
	"context"
	"fmt"

	"shoplink-push/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDirectory reads the identity/role service's users collection. This
// subsystem never writes it; it is the authoritative role source the
// admin-alert fallback path consults when cached token roles look stale.
type UserDirectory struct {
	collection *mongo.Collection
}

func NewUserDirectory(collection *mongo.Collection) *UserDirectory {
	return &UserDirectory{collection: collection}
}

// GetRole looks up the authoritative role for userID
func (d *UserDirectory) GetRole(ctx context.Context, userID string) (models.Role, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	var user models.User
	err = d.collection.FindOne(
		ctx,
		bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"role": 1}),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return "", fmt.Errorf("user %s not found", userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user role: %w", err)
	}
	return user.Role, nil
}

// ElevatedUserIDs returns the ids of every user whose authoritative role is
// in the elevated set
func (d *UserDirectory) ElevatedUserIDs(ctx context.Context) ([]string, error) {
	cursor, err := d.collection.Find(
		ctx,
		bson.M{"role": bson.M{"$in": models.ElevatedRoles()}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query elevated users: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID.Hex())
	}
	return ids, cursor.Err()
}
