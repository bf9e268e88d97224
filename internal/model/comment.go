package model

import "time"

// editedThreshold separates save-on-create updates from real edits.
const editedThreshold = 60 * time.Second

type Comment struct {
	ID         int       `json:"id"`
	ProjectID  int       `json:"project_id"`
	EntityType string    `json:"entity_type"`
	EntityID   int       `json:"entity_id"`
	AuthorID   int       `json:"author_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsEdited reports whether the comment was changed after creation.
func (c *Comment) IsEdited() bool {
	return c.UpdatedAt.Sub(c.CreatedAt) > editedThreshold
}
