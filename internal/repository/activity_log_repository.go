package repository

import (
	"context"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/google/uuid"
)

type ActivityLogRepository struct {
	DB *db.Postgres
}

type CreateActivityLogInput struct {
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
	Details    string
}

func (r ActivityLogRepository) Create(ctx context.Context, in CreateActivityLogInput) (string, error) {
	var id string
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO activity_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1,$2,$3,$4,$5,$6, now())
		RETURNING id
	`, uuid.NewString(), in.UserID, in.Action, in.EntityType, in.EntityID, in.Details).Scan(&id)
	return id, err
}

func (r ActivityLogRepository) List(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, action, entity_type, entity_id, details, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActivityLog
	for rows.Next() {
		var l domain.ActivityLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.EntityType, &l.EntityID, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Clear deletes all audit rows and records the clearing itself.
func (r ActivityLogRepository) Clear(ctx context.Context, actorID string) error {
	if _, err := r.DB.Pool.Exec(ctx, `DELETE FROM activity_logs`); err != nil {
		return err
	}
	_, err := r.Create(ctx, CreateActivityLogInput{
		UserID:     &actorID,
		Action:     "clear_activity_logs",
		EntityType: "activity_logs",
		Details:    "All activity logs cleared",
	})
	return err
}
