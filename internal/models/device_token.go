package models

import "time"

// DeviceToken is the durable mapping from a user identity to the device's
// current push token. One row per user id; the user id is the document key,
// so a re-sync can never create a second row.
type DeviceToken struct {
	UserID      string    `bson:"_id" json:"user_id"`
	Token       string    `bson:"token,omitempty" json:"token,omitempty"` // empty when registration failed
	Role        Role      `bson:"role,omitempty" json:"role,omitempty"`   // snapshot at last sync, not live
	Platform    string    `bson:"platform,omitempty" json:"platform,omitempty"`
	DeviceModel string    `bson:"device_model,omitempty" json:"device_model,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Reachable reports whether a broadcast can be addressed to this row
func (t DeviceToken) Reachable() bool {
	return t.Token != ""
}
