package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User mirrors the identity/role service's view of an account. This backend
// only reads it: role lookups for the admin-alert fallback path and the role
// backfill script. Account management itself lives in the identity service.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
