package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type CommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Insert(ctx context.Context, c *model.Comment) (int, error) {
	query := `
        INSERT INTO comments (project_id, entity_type, entity_id, author_id, body, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, c.ProjectID, c.EntityType, c.EntityID, c.AuthorID, c.Body).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CommentRepository) ListByEntity(ctx context.Context, entityType string, entityID int) ([]model.Comment, error) {
	query := `
        SELECT id, project_id, entity_type, entity_id, author_id, body, created_at, updated_at
        FROM comments
        WHERE entity_type = $1 AND entity_id = $2
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.EntityType, &c.EntityID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DistinctCommenterIDs returns every user who commented on the thread.
func (r *CommentRepository) DistinctCommenterIDs(ctx context.Context, entityType string, entityID int) ([]int, error) {
	query := `
        SELECT DISTINCT author_id
        FROM comments
        WHERE entity_type = $1 AND entity_id = $2
    `
	rows, err := r.db.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// EntityCreatorID resolves the creator of the entity a comment thread hangs
// off of. Entity types map onto fixed tables; anything else is rejected.
func (r *CommentRepository) EntityCreatorID(ctx context.Context, entityType string, entityID int) (int, error) {
	var query string
	switch entityType {
	case "cost":
		query = `SELECT created_by FROM costs WHERE id = $1`
	case "document":
		query = `SELECT created_by FROM documents WHERE id = $1`
	case "timeline_event":
		query = `SELECT created_by FROM timeline_events WHERE id = $1`
	case "project":
		query = `SELECT owner_id FROM projects WHERE id = $1`
	default:
		return 0, fmt.Errorf("unknown entity type: %s", entityType)
	}

	var id int
	if err := r.db.QueryRow(ctx, query, entityID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
