package model

import "time"

// Notification type constants
const (
	NotifTypeCostAdded        = "cost_added"
	NotifTypeLargeExpense     = "large_expense"
	NotifTypeDocumentUploaded = "document_uploaded"
	NotifTypeTimelineEvent    = "timeline_event"
	NotifTypePartnerInvited   = "partner_invited"
	NotifTypeCommentAdded     = "comment_added"
)

// Digest frequency values for NotificationPreference.
const (
	DigestImmediate = "immediate"
	DigestDaily     = "daily"
	DigestWeekly    = "weekly"
	DigestNever     = "never"
)

type Notification struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Type       string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   int       `json:"entity_id"`
	ProjectID  *int      `json:"project_id,omitempty"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationPreference has one row per user; a missing row means defaults.
type NotificationPreference struct {
	UserID               int    `json:"user_id"`
	EmailOnCost          bool   `json:"email_on_cost"`
	EmailOnLargeExpense  bool   `json:"email_on_large_expense"`
	EmailOnDocument      bool   `json:"email_on_document"`
	EmailOnTimeline      bool   `json:"email_on_timeline"`
	EmailDigestFrequency string `json:"email_digest_frequency"`
	Timezone             string `json:"timezone"`
}

// DefaultPreference is what an absent preference row means: everything on,
// immediate delivery.
func DefaultPreference(userID int) *NotificationPreference {
	return &NotificationPreference{
		UserID:               userID,
		EmailOnCost:          true,
		EmailOnLargeExpense:  true,
		EmailOnDocument:      true,
		EmailOnTimeline:      true,
		EmailDigestFrequency: DigestImmediate,
		Timezone:             "UTC",
	}
}

// DisableAllEmail turns off every email path for the user. The frequency
// alone is not enough: bypass sends (large-expense alerts) skip the frequency
// branch and are only stopped by their category flag.
func (p *NotificationPreference) DisableAllEmail() {
	p.EmailOnCost = false
	p.EmailOnLargeExpense = false
	p.EmailOnDocument = false
	p.EmailOnTimeline = false
	p.EmailDigestFrequency = DigestNever
}

type DigestQueueEntry struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	NotificationID int       `json:"notification_id"`
	DigestType     string    `json:"digest_type"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	Processed      bool      `json:"processed"`
	CreatedAt      time.Time `json:"created_at"`
}
