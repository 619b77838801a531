package repository

import (
	"context"
	"errors"
	"time"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type WorkerPaymentRepository struct {
	DB *db.Postgres
}

const paymentColumns = `
	p.id, p.worker_id, p.project_id, pr.name, p.amount, p.payment_date, p.description,
	p.created_by, p.approval_status, p.approved_by, p.created_at, p.updated_at
`

func (r WorkerPaymentRepository) GetByID(ctx context.Context, id string) (*domain.WorkerPayment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM worker_payments p
		JOIN projects pr ON pr.id = p.project_id
		WHERE p.id=$1
	`, id)
	payment, err := scanWorkerPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListByWorker returns a worker's payments, most recent first.
func (r WorkerPaymentRepository) ListByWorker(ctx context.Context, workerID string) ([]domain.WorkerPayment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM worker_payments p
		JOIN projects pr ON pr.id = p.project_id
		WHERE p.worker_id=$1
		ORDER BY p.payment_date DESC, p.created_at DESC
	`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkerPayments(rows)
}

// Balance sums a worker's approved payments.
func (r WorkerPaymentRepository) Balance(ctx context.Context, workerID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM worker_payments
		WHERE worker_id=$1 AND approval_status='approved'
	`, workerID).Scan(&balance)
	return balance, err
}

func (r WorkerPaymentRepository) ApprovedByWorker(ctx context.Context, workerID string, from, to time.Time) ([]domain.WorkerPayment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM worker_payments p
		JOIN projects pr ON pr.id = p.project_id
		WHERE p.worker_id=$1 AND p.approval_status='approved'
		  AND p.payment_date >= $2::date AND p.payment_date <= $3::date
		ORDER BY p.payment_date DESC
	`, workerID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWorkerPayments(rows)
}

func (r WorkerPaymentRepository) GetApprovable(ctx context.Context, id string) (domain.Approvable, error) {
	return getApprovable(ctx, r.DB, domain.KindWorkerPayment, id)
}

func (r WorkerPaymentRepository) MarkApproved(ctx context.Context, id, approvedBy string) (domain.Approvable, error) {
	return markApproved(ctx, r.DB, domain.KindWorkerPayment, id, approvedBy)
}

func scanWorkerPayment(row pgx.Row) (*domain.WorkerPayment, error) {
	var (
		p      domain.WorkerPayment
		status string
	)
	if err := row.Scan(
		&p.ID, &p.WorkerID, &p.ProjectID, &p.ProjectName, &p.Amount, &p.PaymentDate,
		&p.Description, &p.CreatedBy, &status, &p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.ApprovalStatus = domain.ApprovalStatus(status)
	return &p, nil
}

func collectWorkerPayments(rows pgx.Rows) ([]domain.WorkerPayment, error) {
	var out []domain.WorkerPayment
	for rows.Next() {
		p, err := scanWorkerPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
