package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type CostRepository struct {
	db *pgxpool.Pool
}

func NewCostRepository(db *pgxpool.Pool) *CostRepository {
	return &CostRepository{db: db}
}

func (r *CostRepository) Insert(ctx context.Context, c *model.Cost) (int, error) {
	query := `
        INSERT INTO costs (project_id, created_by, title, amount, category, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, c.ProjectID, c.CreatedBy, c.Title, c.Amount, c.Category).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *CostRepository) ListByProject(ctx context.Context, projectID int) ([]model.Cost, error) {
	query := `
        SELECT id, project_id, created_by, title, amount, category, created_at
        FROM costs
        WHERE project_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []model.Cost
	for rows.Next() {
		var c model.Cost
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.CreatedBy, &c.Title, &c.Amount, &c.Category, &c.CreatedAt); err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}
