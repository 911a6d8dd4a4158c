package models

import "time"

// NotificationType classifies an in-app notification entry
type NotificationType string

// Notification types
const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// LocalNotification is one entry in the per-user in-app notification list.
// Entries are a local projection on the device, not shared across devices;
// only the Read flag is ever mutated after insertion.
type LocalNotification struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Type    NotificationType  `json:"type"`
	Params  map[string]string `json:"params,omitempty"`
	Time    time.Time         `json:"time"`
	Read    bool              `json:"read"`
}
