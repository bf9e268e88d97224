package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"estatehub/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.Int("owner_id", p.OwnerID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (owner_id, name, description, currency, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.OwnerID,
		p.Name,
		p.Description,
		p.Currency,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, err
	}
	return id, nil
}

// FindByID returns the project, including soft-deleted rows; callers check
// DeletedAt themselves.
func (r *ProjectRepository) FindByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, owner_id, name, description, currency, created_at, deleted_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Currency, &p.CreatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns projects the user owns or has accepted access to.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int) ([]model.Project, error) {
	query := `
        SELECT DISTINCT p.id, p.owner_id, p.name, p.description, p.currency, p.created_at, p.deleted_at
        FROM projects p
        LEFT JOIN project_access a
               ON a.project_id = p.id
              AND a.user_id = $1
              AND a.accepted_at IS NOT NULL
              AND a.deleted_at IS NULL
        WHERE p.deleted_at IS NULL
          AND (p.owner_id = $1 OR a.id IS NOT NULL)
        ORDER BY p.id
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Currency, &p.CreatedAt, &p.DeletedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// AcceptedMemberIDs returns user ids of accepted, non-revoked partners.
func (r *ProjectRepository) AcceptedMemberIDs(ctx context.Context, projectID int) ([]int, error) {
	query := `
        SELECT user_id
        FROM project_access
        WHERE project_id = $1
          AND accepted_at IS NOT NULL
          AND deleted_at IS NULL
    `
	rows, err := r.db.Query(ctx, query, projectID)
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

// HasAccess reports whether the user owns the project or holds an accepted,
// non-revoked access grant.
func (r *ProjectRepository) HasAccess(ctx context.Context, projectID, userID int) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM projects p
            LEFT JOIN project_access a
                   ON a.project_id = p.id
                  AND a.user_id = $2
                  AND a.accepted_at IS NOT NULL
                  AND a.deleted_at IS NULL
            WHERE p.id = $1
              AND p.deleted_at IS NULL
              AND (p.owner_id = $2 OR a.id IS NOT NULL)
        )
    `
	var ok bool
	if err := r.db.QueryRow(ctx, query, projectID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// InviteUser records a partner invitation.
func (r *ProjectRepository) InviteUser(ctx context.Context, a *model.ProjectAccess) (int, error) {
	query := `
        INSERT INTO project_access (project_id, user_id, invited_by, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, a.ProjectID, a.UserID, a.InvitedBy).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project access", zap.Error(err))
		return 0, err
	}
	return id, nil
}

// AcceptInvite marks the invitation accepted and returns the updated row.
func (r *ProjectRepository) AcceptInvite(ctx context.Context, accessID, userID int) (*model.ProjectAccess, error) {
	query := `
        UPDATE project_access
        SET accepted_at = NOW()
        WHERE id = $1
          AND user_id = $2
          AND accepted_at IS NULL
          AND deleted_at IS NULL
        RETURNING id, project_id, user_id, invited_by, accepted_at, created_at, deleted_at
    `
	var a model.ProjectAccess
	err := r.db.QueryRow(ctx, query, accessID, userID).Scan(
		&a.ID, &a.ProjectID, &a.UserID, &a.InvitedBy, &a.AcceptedAt, &a.CreatedAt, &a.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
