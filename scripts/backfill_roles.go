package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Re-stamps the denormalized role on device_tokens rows from the users
// collection. Run after bulk role changes so the cached-role fast path
// of alert targeting sees current roles again.
func main() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("DATABASE_NAME")
	if dbName == "" {
		dbName = "shoplink_push"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(ctx)

	users := client.Database(dbName).Collection("users")
	tokens := client.Database(dbName).Collection("device_tokens")

	cursor, err := users.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1, "role": 1}))
	if err != nil {
		log.Fatal(err)
	}
	defer cursor.Close(ctx)

	updated := 0
	for cursor.Next(ctx) {
		var user struct {
			ID   interface{} `bson:"_id"`
			Role string      `bson:"role"`
		}
		if err := cursor.Decode(&user); err != nil {
			log.Fatal(err)
		}
		if user.Role == "" {
			user.Role = "customer"
		}

		// device_tokens is keyed by the user id string
		id := fmt.Sprintf("%v", user.ID)
		if oid, ok := user.ID.(interface{ Hex() string }); ok {
			id = oid.Hex()
		}

		result, err := tokens.UpdateOne(
			ctx,
			bson.M{"_id": id, "role": bson.M{"$ne": user.Role}},
			bson.M{"$set": bson.M{"role": user.Role, "updated_at": time.Now()}},
		)
		if err != nil {
			log.Fatal(err)
		}
		updated += int(result.ModifiedCount)
	}
	if err := cursor.Err(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Backfilled role on %d device token rows\n", updated)
}
