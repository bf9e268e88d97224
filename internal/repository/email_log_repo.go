package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type EmailLogRepository struct {
	db *pgxpool.Pool
}

func NewEmailLogRepository(db *pgxpool.Pool) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Insert appends one send-attempt record. Rows are write-once.
func (r *EmailLogRepository) Insert(ctx context.Context, l *model.EmailLog) error {
	query := `
        INSERT INTO email_logs
            (user_id, notification_id, email_type, recipient_email, subject,
             status, provider_id, attempts, last_error, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query,
		l.UserID, l.NotificationID, l.EmailType, l.RecipientEmail, l.Subject,
		l.Status, l.ProviderID, l.Attempts, l.LastError,
	).Scan(&l.ID)
}

func (r *EmailLogRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.EmailLog, error) {
	query := `
        SELECT id, user_id, notification_id, email_type, recipient_email, subject,
               status, provider_id, attempts, last_error, created_at
        FROM email_logs
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.EmailLog
	for rows.Next() {
		var l model.EmailLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.NotificationID, &l.EmailType, &l.RecipientEmail,
			&l.Subject, &l.Status, &l.ProviderID, &l.Attempts, &l.LastError, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
