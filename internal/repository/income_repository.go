package repository

import (
	"context"
	"errors"
	"time"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type IncomeRepository struct {
	DB *db.Postgres
}

type CreateIncomeInput struct {
	IncomeSourceID  string
	Amount          decimal.Decimal
	NetAmount       *decimal.Decimal
	Description     string
	TransactionDate time.Time
	CreatedBy       string
}

const incomeColumns = `
	i.id, i.income_source_id, s.name, s.fee_percentage, i.amount, i.net_amount,
	i.description, i.transaction_date, i.created_by, i.approval_status, i.approved_by,
	i.created_at, i.updated_at
`

func (r IncomeRepository) Create(ctx context.Context, in CreateIncomeInput) (*domain.IncomeRecord, error) {
	var id string
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO income_records
			(id, income_source_id, amount, net_amount, description, transaction_date, created_by, approval_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'pending', now(), now())
		RETURNING id
	`, uuid.NewString(), in.IncomeSourceID, in.Amount, in.NetAmount, in.Description,
		in.TransactionDate.Format("2006-01-02"), in.CreatedBy).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r IncomeRepository) GetByID(ctx context.Context, id string) (*domain.IncomeRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+incomeColumns+`
		FROM income_records i
		JOIN income_sources s ON s.id = i.income_source_id
		WHERE i.id=$1
	`, id)
	rec, err := scanIncome(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns records filtered by approval status when one is given.
func (r IncomeRepository) List(ctx context.Context, status *domain.ApprovalStatus, limit int) ([]domain.IncomeRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+incomeColumns+`
		FROM income_records i
		JOIN income_sources s ON s.id = i.income_source_id
		WHERE $1::text IS NULL OR i.approval_status = $1
		ORDER BY i.transaction_date DESC, i.created_at DESC
		LIMIT $2
	`, (*string)(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncome(rows)
}

// ApprovedInRange returns approved records dated within [from, to] inclusive.
func (r IncomeRepository) ApprovedInRange(ctx context.Context, from, to time.Time) ([]domain.IncomeRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+incomeColumns+`
		FROM income_records i
		JOIN income_sources s ON s.id = i.income_source_id
		WHERE i.approval_status='approved'
		  AND i.transaction_date >= $1::date AND i.transaction_date <= $2::date
		ORDER BY i.transaction_date DESC
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncome(rows)
}

// ApprovedByCreator returns approved records a user created within a range.
func (r IncomeRepository) ApprovedByCreator(ctx context.Context, userID string, from, to time.Time) ([]domain.IncomeRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+incomeColumns+`
		FROM income_records i
		JOIN income_sources s ON s.id = i.income_source_id
		WHERE i.approval_status='approved' AND i.created_by=$1
		  AND i.transaction_date >= $2::date AND i.transaction_date <= $3::date
		ORDER BY i.transaction_date DESC
	`, userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIncome(rows)
}

func (r IncomeRepository) GetApprovable(ctx context.Context, id string) (domain.Approvable, error) {
	return getApprovable(ctx, r.DB, domain.KindIncomeRecord, id)
}

func (r IncomeRepository) MarkApproved(ctx context.Context, id, approvedBy string) (domain.Approvable, error) {
	return markApproved(ctx, r.DB, domain.KindIncomeRecord, id, approvedBy)
}

func scanIncome(row pgx.Row) (*domain.IncomeRecord, error) {
	var (
		rec    domain.IncomeRecord
		status string
	)
	if err := row.Scan(
		&rec.ID, &rec.IncomeSourceID, &rec.SourceName, &rec.FeePercentage, &rec.Amount, &rec.NetAmount,
		&rec.Description, &rec.TransactionDate, &rec.CreatedBy, &status, &rec.ApprovedBy,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.ApprovalStatus = domain.ApprovalStatus(status)
	return &rec, nil
}

func collectIncome(rows pgx.Rows) ([]domain.IncomeRecord, error) {
	var out []domain.IncomeRecord
	for rows.Next() {
		rec, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
