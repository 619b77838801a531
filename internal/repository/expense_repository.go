package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ExpenseRepository struct {
	DB *db.Postgres
}

type CreateExpenseInput struct {
	Category        string
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	VendorName      *string
	InvoiceNumber   *string
	CreatedBy       string
}

const expenseColumns = `
	id, category, amount, description, transaction_date, vendor_name, invoice_number,
	receipt_number, created_by, approval_status, approved_by, created_at, updated_at
`

func (r ExpenseRepository) Create(ctx context.Context, in CreateExpenseInput) (*domain.ExpenseRecord, error) {
	receipt := fmt.Sprintf("EXP-%d-%s", time.Now().UnixMilli(),
		strings.ToUpper(strings.ReplaceAll(uuid.NewString()[:9], "-", "")))
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO expense_records
			(id, category, amount, description, transaction_date, vendor_name, invoice_number,
			 receipt_number, created_by, approval_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending', now(), now())
		RETURNING `+expenseColumns+`
	`, uuid.NewString(), in.Category, in.Amount, in.Description, in.TransactionDate.Format("2006-01-02"),
		in.VendorName, in.InvoiceNumber, receipt, in.CreatedBy)
	return scanExpense(row)
}

func (r ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM expense_records
		WHERE id=$1
	`, id)
	rec, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r ExpenseRepository) List(ctx context.Context, status *domain.ApprovalStatus, limit int) ([]domain.ExpenseRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expense_records
		WHERE $1::text IS NULL OR approval_status = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2
	`, (*string)(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ApprovedInRange returns approved records dated within [from, to] inclusive.
func (r ExpenseRepository) ApprovedInRange(ctx context.Context, from, to time.Time) ([]domain.ExpenseRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expense_records
		WHERE approval_status='approved'
		  AND transaction_date >= $1::date AND transaction_date <= $2::date
		ORDER BY transaction_date DESC
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r ExpenseRepository) ApprovedByCreator(ctx context.Context, userID string, from, to time.Time) ([]domain.ExpenseRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expense_records
		WHERE approval_status='approved' AND created_by=$1
		  AND transaction_date >= $2::date AND transaction_date <= $3::date
		ORDER BY transaction_date DESC
	`, userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r ExpenseRepository) GetApprovable(ctx context.Context, id string) (domain.Approvable, error) {
	return getApprovable(ctx, r.DB, domain.KindExpenseRecord, id)
}

func (r ExpenseRepository) MarkApproved(ctx context.Context, id, approvedBy string) (domain.Approvable, error) {
	return markApproved(ctx, r.DB, domain.KindExpenseRecord, id, approvedBy)
}

func scanExpense(row pgx.Row) (*domain.ExpenseRecord, error) {
	var (
		rec    domain.ExpenseRecord
		status string
	)
	if err := row.Scan(
		&rec.ID, &rec.Category, &rec.Amount, &rec.Description, &rec.TransactionDate,
		&rec.VendorName, &rec.InvoiceNumber, &rec.ReceiptNumber, &rec.CreatedBy,
		&status, &rec.ApprovedBy, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.ApprovalStatus = domain.ApprovalStatus(status)
	return &rec, nil
}

func collectExpenses(rows pgx.Rows) ([]domain.ExpenseRecord, error) {
	var out []domain.ExpenseRecord
	for rows.Next() {
		rec, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
