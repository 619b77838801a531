package repository

import (
	"context"
	"errors"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type IncomeSourceRepository struct {
	DB *db.Postgres
}

type CreateIncomeSourceInput struct {
	Name              string
	Description       string
	AllocationFormula *string
	FeePercentage     decimal.Decimal
}

type UpdateIncomeSourceInput struct {
	Name              *string
	Description       *string
	AllocationFormula *string
	FeePercentage     *decimal.Decimal
	IsActive          *bool
}

const incomeSourceColumns = `
	id, name, description, allocation_formula, fee_percentage, is_active, created_at, updated_at
`

func (r IncomeSourceRepository) Create(ctx context.Context, in CreateIncomeSourceInput) (*domain.IncomeSource, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO income_sources (id, name, description, allocation_formula, fee_percentage, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,true, now(), now())
		RETURNING `+incomeSourceColumns+`
	`, uuid.NewString(), in.Name, in.Description, in.AllocationFormula, in.FeePercentage)
	return scanIncomeSource(row)
}

func (r IncomeSourceRepository) GetByID(ctx context.Context, id string) (*domain.IncomeSource, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+incomeSourceColumns+`
		FROM income_sources
		WHERE id=$1
	`, id)
	src, err := scanIncomeSource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return src, nil
}

// ListActive returns active sources ordered by name.
func (r IncomeSourceRepository) ListActive(ctx context.Context) ([]domain.IncomeSource, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+incomeSourceColumns+`
		FROM income_sources
		WHERE is_active=true
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IncomeSource
	for rows.Next() {
		src, err := scanIncomeSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *src)
	}
	return out, rows.Err()
}

func (r IncomeSourceRepository) Update(ctx context.Context, id string, in UpdateIncomeSourceInput) (*domain.IncomeSource, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE income_sources
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    allocation_formula = COALESCE($4, allocation_formula),
		    fee_percentage = COALESCE($5, fee_percentage),
		    is_active = COALESCE($6, is_active),
		    updated_at = now()
		WHERE id=$1
		RETURNING `+incomeSourceColumns+`
	`, id, in.Name, in.Description, in.AllocationFormula, in.FeePercentage, in.IsActive)
	src, err := scanIncomeSource(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return src, nil
}

func scanIncomeSource(row pgx.Row) (*domain.IncomeSource, error) {
	var s domain.IncomeSource
	if err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.AllocationFormula, &s.FeePercentage,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
