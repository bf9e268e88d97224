package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type SecurityEventRepository struct {
	db *pgxpool.Pool
}

func NewSecurityEventRepository(db *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// Insert appends one audit row. The table is insert-only; no update or delete
// path exists.
func (r *SecurityEventRepository) Insert(ctx context.Context, e *model.SecurityEvent) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO security_events (user_id, event_type, ip_address, user_agent, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query, e.UserID, e.EventType, e.IPAddress, e.UserAgent, meta).Scan(&e.ID)
}

// ListByUser returns the user's events newest-first.
func (r *SecurityEventRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.SecurityEvent, error) {
	query := `
        SELECT id, user_id, event_type, ip_address, user_agent, metadata, created_at
        FROM security_events
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.SecurityEvent
	for rows.Next() {
		var e model.SecurityEvent
		var meta []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventType, &e.IPAddress, &e.UserAgent, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
