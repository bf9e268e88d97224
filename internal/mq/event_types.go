package mq

import "time"

// Routing keys.
const (
	KeyNotificationCreated = "notification.created"
)

// NotificationCreatedPayload carries one per-recipient notification from the
// fan-out to the email dispatcher. Data holds template extras (amount,
// project name, actor name) so the worker does not re-query the source rows.
type NotificationCreatedPayload struct {
	NotificationID int               `json:"notification_id"`
	UserID         int               `json:"user_id"`
	Type           string            `json:"type"`
	EntityType     string            `json:"entity_type"`
	EntityID       int               `json:"entity_id"`
	ProjectID      *int              `json:"project_id,omitempty"`
	Message        string            `json:"message"`
	Data           map[string]string `json:"data,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
