package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WorkerApprovalRepository struct {
	DB *db.Postgres
}

type CreateWorkerApprovalInput struct {
	Action    domain.WorkerAction
	UserID    string
	UserData  domain.WorkerSnapshot
	CreatedBy string
}

func (r WorkerApprovalRepository) Create(ctx context.Context, in CreateWorkerApprovalInput) (*domain.WorkerApproval, error) {
	data, err := json.Marshal(in.UserData)
	if err != nil {
		return nil, fmt.Errorf("encode user snapshot: %w", err)
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO worker_management_approvals
			(id, action, user_id, user_data, created_by, approval_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'pending', now(), now())
		RETURNING id, action, user_id, user_data, created_by, approval_status, approved_by, created_at, updated_at
	`, uuid.NewString(), string(in.Action), in.UserID, data, in.CreatedBy)
	return scanWorkerApproval(row)
}

func (r WorkerApprovalRepository) GetByID(ctx context.Context, id string) (*domain.WorkerApproval, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, action, user_id, user_data, created_by, approval_status, approved_by, created_at, updated_at
		FROM worker_management_approvals
		WHERE id=$1
	`, id)
	wa, err := scanWorkerApproval(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return wa, nil
}

// ListPending returns pending approvals, optionally limited to one action.
func (r WorkerApprovalRepository) ListPending(ctx context.Context, action *domain.WorkerAction) ([]domain.WorkerApproval, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT wa.id, wa.action, wa.user_id, wa.user_data, wa.created_by, wa.approval_status,
		       wa.approved_by, wa.created_at, wa.updated_at, u.full_name
		FROM worker_management_approvals wa
		JOIN users u ON u.id = wa.created_by
		WHERE wa.approval_status='pending'
		  AND ($1::text IS NULL OR wa.action = $1)
		ORDER BY wa.created_at DESC
	`, (*string)(action))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkerApproval
	for rows.Next() {
		var (
			wa       domain.WorkerApproval
			action   string
			status   string
			userData []byte
		)
		if err := rows.Scan(
			&wa.ID, &action, &wa.UserID, &userData, &wa.CreatedBy, &status,
			&wa.ApprovedBy, &wa.CreatedAt, &wa.UpdatedAt, &wa.CreatedByName,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(userData, &wa.UserData); err != nil {
			return nil, fmt.Errorf("decode user snapshot: %w", err)
		}
		wa.Action = domain.WorkerAction(action)
		wa.ApprovalStatus = domain.ApprovalStatus(status)
		out = append(out, wa)
	}
	return out, rows.Err()
}

func (r WorkerApprovalRepository) GetApprovable(ctx context.Context, id string) (domain.Approvable, error) {
	return getApprovable(ctx, r.DB, domain.KindWorkerApproval, id)
}

func (r WorkerApprovalRepository) MarkApproved(ctx context.Context, id, approvedBy string) (domain.Approvable, error) {
	return markApproved(ctx, r.DB, domain.KindWorkerApproval, id, approvedBy)
}

func scanWorkerApproval(row pgx.Row) (*domain.WorkerApproval, error) {
	var (
		wa       domain.WorkerApproval
		action   string
		status   string
		userData []byte
	)
	if err := row.Scan(
		&wa.ID, &action, &wa.UserID, &userData, &wa.CreatedBy, &status,
		&wa.ApprovedBy, &wa.CreatedAt, &wa.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(userData, &wa.UserData); err != nil {
		return nil, fmt.Errorf("decode user snapshot: %w", err)
	}
	wa.Action = domain.WorkerAction(action)
	wa.ApprovalStatus = domain.ApprovalStatus(status)
	return &wa, nil
}
