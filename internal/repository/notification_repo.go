package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// BulkInsert writes one notification row per recipient in a single batch and
// fills in the generated ids and timestamps.
func (r *NotificationRepository) BulkInsert(ctx context.Context, notifs []*model.Notification) error {
	if len(notifs) == 0 {
		return nil
	}

	query := `
        INSERT INTO notifications (user_id, type, entity_type, entity_id, project_id, message, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
        RETURNING id, created_at
    `

	batch := &pgx.Batch{}
	for _, n := range notifs {
		batch.Queue(query, n.UserID, n.Type, n.EntityType, n.EntityID, n.ProjectID, n.Message)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, n := range notifs {
		if err := results.QueryRow().Scan(&n.ID, &n.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.Notification, error) {
	query := `
        SELECT id, user_id, type, entity_type, entity_id, project_id, message, read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.EntityType, &n.EntityID, &n.ProjectID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (r *NotificationRepository) FindByID(ctx context.Context, id int) (*model.Notification, error) {
	query := `
        SELECT id, user_id, type, entity_type, entity_id, project_id, message, read, created_at
        FROM notifications
        WHERE id = $1
    `
	var n model.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.Type, &n.EntityType, &n.EntityID, &n.ProjectID, &n.Message, &n.Read, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead flips the read flag; notifications are never hard-deleted.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	query := `
        UPDATE notifications
        SET read = TRUE
        WHERE id = $1 AND user_id = $2
    `
	_, err := r.db.Exec(ctx, query, id, userID)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int) error {
	query := `
        UPDATE notifications
        SET read = TRUE
        WHERE user_id = $1 AND read = FALSE
    `
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
