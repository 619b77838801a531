package repository

import (
	"context"
	"errors"
	"fmt"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// tableForKind maps approval record kinds to their backing tables. Only
// values from this map are ever interpolated into SQL.
var tableForKind = map[domain.RecordKind]string{
	domain.KindIncomeRecord:   "income_records",
	domain.KindExpenseRecord:  "expense_records",
	domain.KindAsset:          "assets",
	domain.KindWorkerPayment:  "worker_payments",
	domain.KindWorkerApproval: "worker_management_approvals",
}

func getApprovable(ctx context.Context, pg *db.Postgres, kind domain.RecordKind, id string) (domain.Approvable, error) {
	table, ok := tableForKind[kind]
	if !ok {
		return domain.Approvable{}, fmt.Errorf("unknown record kind %q", kind)
	}
	a := domain.Approvable{Kind: kind}
	var status string
	err := pg.Pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, created_by, approval_status, approved_by, updated_at
		FROM %s
		WHERE id=$1
	`, table), id).Scan(&a.ID, &a.CreatedBy, &status, &a.ApprovedBy, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Approvable{}, ErrNotFound
		}
		return domain.Approvable{}, err
	}
	a.ApprovalStatus = domain.ApprovalStatus(status)
	return a, nil
}

// markApproved is a conditional update: it only lands if the record has not
// been approved in the meantime. Zero rows updated surfaces as ErrNotFound,
// which the caller interprets against the state it previously fetched.
func markApproved(ctx context.Context, pg *db.Postgres, kind domain.RecordKind, id, approvedBy string) (domain.Approvable, error) {
	table, ok := tableForKind[kind]
	if !ok {
		return domain.Approvable{}, fmt.Errorf("unknown record kind %q", kind)
	}
	a := domain.Approvable{Kind: kind}
	var status string
	err := pg.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s
		SET approval_status='approved', approved_by=$2, updated_at=now()
		WHERE id=$1 AND approval_status <> 'approved'
		RETURNING id, created_by, approval_status, approved_by, updated_at
	`, table), id, approvedBy).Scan(&a.ID, &a.CreatedBy, &status, &a.ApprovedBy, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Approvable{}, ErrNotFound
		}
		return domain.Approvable{}, err
	}
	a.ApprovalStatus = domain.ApprovalStatus(status)
	return a, nil
}
