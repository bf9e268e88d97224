package model

import "time"

// Email log statuses.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog is an append-only record of one send attempt. Rows are never
// mutated after insert.
type EmailLog struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	NotificationID *int      `json:"notification_id,omitempty"`
	EmailType      string    `json:"email_type"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	ProviderID     string    `json:"provider_id,omitempty"`
	Attempts       int       `json:"attempts"`
	LastError      string    `json:"last_error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
