package model

import "time"

type Project struct {
	ID          int        `json:"id"`
	OwnerID     int        `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Currency    string     `json:"currency"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// ProjectAccess is a partner invitation. AcceptedAt is nil until the invitee
// accepts; DeletedAt soft-revokes the grant.
type ProjectAccess struct {
	ID         int        `json:"id"`
	ProjectID  int        `json:"project_id"`
	UserID     int        `json:"user_id"`
	InvitedBy  int        `json:"invited_by"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

type Cost struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	CreatedBy int       `json:"created_by"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type Document struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	CreatedBy int       `json:"created_by"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}

type TimelineEvent struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	CreatedBy int       `json:"created_by"`
	Title     string    `json:"title"`
	EventDate time.Time `json:"event_date"`
	CreatedAt time.Time `json:"created_at"`
}
