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

type SalaryRepository struct {
	DB *db.Postgres
}

type CreateSalaryInput struct {
	UserID         string
	Month          time.Time
	Amount         decimal.Decimal
	ProfitSharePct decimal.Decimal
	TotalProfit    decimal.Decimal
}

const salaryColumns = `
	s.id, s.user_id, u.full_name, s.month, s.amount, s.profit_share_percentage,
	s.total_profit, s.status, s.paid_date, s.created_at
`

// Insert records a salary for (user, month). The schema's uniqueness
// constraint makes this idempotent: a second insert for the same pair is a
// no-op and the existing row is returned with inserted=false.
func (r SalaryRepository) Insert(ctx context.Context, in CreateSalaryInput) (*domain.SalaryRecord, bool, error) {
	month := in.Month.Format("2006-01-02")
	var id string
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO monthly_salary_history
			(id, user_id, month, amount, profit_share_percentage, total_profit, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,'pending', now())
		ON CONFLICT (user_id, month) DO NOTHING
		RETURNING id
	`, uuid.NewString(), in.UserID, month, in.Amount, in.ProfitSharePct, in.TotalProfit).Scan(&id)
	if err == nil {
		rec, err := r.GetByID(ctx, id)
		return rec, true, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// Conflict: the record for this month already exists.
	existing, err := r.GetByUserAndMonth(ctx, in.UserID, in.Month)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r SalaryRepository) GetByID(ctx context.Context, id string) (*domain.SalaryRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+salaryColumns+`
		FROM monthly_salary_history s
		JOIN users u ON u.id = s.user_id
		WHERE s.id=$1
	`, id)
	rec, err := scanSalary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r SalaryRepository) GetByUserAndMonth(ctx context.Context, userID string, month time.Time) (*domain.SalaryRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+salaryColumns+`
		FROM monthly_salary_history s
		JOIN users u ON u.id = s.user_id
		WHERE s.user_id=$1 AND s.month=$2::date
	`, userID, month.Format("2006-01-02"))
	rec, err := scanSalary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r SalaryRepository) MarkPaid(ctx context.Context, id string, paidDate time.Time) (*domain.SalaryRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE monthly_salary_history s
		SET status='paid', paid_date=$2::date
		FROM users u
		WHERE s.id=$1 AND u.id = s.user_id
		RETURNING `+salaryColumns+`
	`, id, paidDate.Format("2006-01-02"))
	rec, err := scanSalary(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// History lists salary records, newest month first. When userID is set the
// listing is scoped to that user.
func (r SalaryRepository) History(ctx context.Context, userID *string) ([]domain.SalaryRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+salaryColumns+`
		FROM monthly_salary_history s
		JOIN users u ON u.id = s.user_id
		WHERE $1::uuid IS NULL OR s.user_id = $1
		ORDER BY s.month DESC, u.full_name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SalaryRecord
	for rows.Next() {
		rec, err := scanSalary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanSalary(row pgx.Row) (*domain.SalaryRecord, error) {
	var (
		rec    domain.SalaryRecord
		status string
	)
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.UserName, &rec.Month, &rec.Amount, &rec.ProfitSharePct,
		&rec.TotalProfit, &status, &rec.PaidDate, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.Status = domain.SalaryStatus(status)
	return &rec, nil
}
