package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Insert(ctx context.Context, e *model.TimelineEvent) (int, error) {
	query := `
        INSERT INTO timeline_events (project_id, created_by, title, event_date, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, e.ProjectID, e.CreatedBy, e.Title, e.EventDate).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *EventRepository) ListByProject(ctx context.Context, projectID int) ([]model.TimelineEvent, error) {
	query := `
        SELECT id, project_id, created_by, title, event_date, created_at
        FROM timeline_events
        WHERE project_id = $1
        ORDER BY event_date
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.TimelineEvent
	for rows.Next() {
		var e model.TimelineEvent
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.CreatedBy, &e.Title, &e.EventDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
