package events

import "time"

const (
	NotificationCreatedTopic = "sigead.notification.created.v1"
	NotificationCreatedType  = "notification.created"
)

type NotificationCreatedEvent struct {
	EventType      string    `json:"event_type"`
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	LinkURL        string    `json:"link_url,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
