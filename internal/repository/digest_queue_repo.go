package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type DigestQueueRepository struct {
	db *pgxpool.Pool
}

func NewDigestQueueRepository(db *pgxpool.Pool) *DigestQueueRepository {
	return &DigestQueueRepository{db: db}
}

func (r *DigestQueueRepository) Insert(ctx context.Context, e *model.DigestQueueEntry) error {
	query := `
        INSERT INTO digest_queue (user_id, notification_id, digest_type, scheduled_for, processed, created_at)
        VALUES ($1, $2, $3, $4, FALSE, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, e.UserID, e.NotificationID, e.DigestType, e.ScheduledFor).Scan(&e.ID)
}

// DueEntries returns unprocessed entries whose scheduled time has passed,
// oldest first.
func (r *DigestQueueRepository) DueEntries(ctx context.Context, now time.Time, limit int) ([]model.DigestQueueEntry, error) {
	query := `
        SELECT id, user_id, notification_id, digest_type, scheduled_for, processed, created_at
        FROM digest_queue
        WHERE processed = FALSE AND scheduled_for <= $1
        ORDER BY scheduled_for
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.DigestQueueEntry
	for rows.Next() {
		var e model.DigestQueueEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.NotificationID, &e.DigestType, &e.ScheduledFor, &e.Processed, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkProcessed consumes entries; each entry is consumed exactly once.
func (r *DigestQueueRepository) MarkProcessed(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
        UPDATE digest_queue
        SET processed = TRUE
        WHERE id = ANY($1)
    `
	_, err := r.db.Exec(ctx, query, ids)
	return err
}
