package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type DocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Insert(ctx context.Context, d *model.Document) (int, error) {
	query := `
        INSERT INTO documents (project_id, created_by, file_name, file_url, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, d.ProjectID, d.CreatedBy, d.FileName, d.FileURL).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *DocumentRepository) ListByProject(ctx context.Context, projectID int) ([]model.Document, error) {
	query := `
        SELECT id, project_id, created_by, file_name, file_url, created_at
        FROM documents
        WHERE project_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.CreatedBy, &d.FileName, &d.FileURL, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
