package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"estatehub/internal/model"
)

type PreferenceRepository struct {
	db *pgxpool.Pool
}

func NewPreferenceRepository(db *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Find returns the user's preference row, or the defaults when no row exists.
// Preference rows are created lazily; absence is not an error.
func (r *PreferenceRepository) Find(ctx context.Context, userID int) (*model.NotificationPreference, error) {
	query := `
        SELECT user_id, email_on_cost, email_on_large_expense, email_on_document,
               email_on_timeline, email_digest_frequency, timezone
        FROM notification_preferences
        WHERE user_id = $1
    `
	var p model.NotificationPreference
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.EmailOnCost, &p.EmailOnLargeExpense, &p.EmailOnDocument,
		&p.EmailOnTimeline, &p.EmailDigestFrequency, &p.Timezone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DefaultPreference(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert writes the user's preference row, creating it on first save.
func (r *PreferenceRepository) Upsert(ctx context.Context, p *model.NotificationPreference) error {
	query := `
        INSERT INTO notification_preferences
            (user_id, email_on_cost, email_on_large_expense, email_on_document,
             email_on_timeline, email_digest_frequency, timezone)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id) DO UPDATE SET
            email_on_cost          = EXCLUDED.email_on_cost,
            email_on_large_expense = EXCLUDED.email_on_large_expense,
            email_on_document      = EXCLUDED.email_on_document,
            email_on_timeline      = EXCLUDED.email_on_timeline,
            email_digest_frequency = EXCLUDED.email_digest_frequency,
            timezone               = EXCLUDED.timezone
    `
	_, err := r.db.Exec(ctx, query,
		p.UserID, p.EmailOnCost, p.EmailOnLargeExpense, p.EmailOnDocument,
		p.EmailOnTimeline, p.EmailDigestFrequency, p.Timezone,
	)
	return err
}
