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

type AssetRepository struct {
	DB *db.Postgres
}

type CreateAssetInput struct {
	Name          string
	Description   string
	PurchaseDate  *time.Time
	PurchaseValue decimal.Decimal
	CurrentValue  decimal.Decimal
	Condition     string
	Status        string
	CreatedBy     string
}

type UpdateAssetInput struct {
	Name         *string
	Description  *string
	CurrentValue *decimal.Decimal
	Condition    *string
	Status       *string
}

const assetColumns = `
	id, name, description, purchase_date, purchase_value, current_value, condition, status,
	created_by, approval_status, approved_by, created_at, updated_at
`

func (r AssetRepository) Create(ctx context.Context, in CreateAssetInput) (*domain.Asset, error) {
	var purchaseDate *string
	if in.PurchaseDate != nil {
		d := in.PurchaseDate.Format("2006-01-02")
		purchaseDate = &d
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO assets
			(id, name, description, purchase_date, purchase_value, current_value, condition, status,
			 created_by, approval_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending', now(), now())
		RETURNING `+assetColumns+`
	`, uuid.NewString(), in.Name, in.Description, purchaseDate, in.PurchaseValue, in.CurrentValue,
		in.Condition, in.Status, in.CreatedBy)
	return scanAsset(row)
}

func (r AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE id=$1
	`, id)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r AssetRepository) List(ctx context.Context, limit int) ([]domain.Asset, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+assetColumns+`
		FROM assets
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r AssetRepository) Update(ctx context.Context, id string, in UpdateAssetInput) (*domain.Asset, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE assets
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    current_value = COALESCE($4, current_value),
		    condition = COALESCE($5, condition),
		    status = COALESCE($6, status),
		    updated_at = now()
		WHERE id=$1
		RETURNING `+assetColumns+`
	`, id, in.Name, in.Description, in.CurrentValue, in.Condition, in.Status)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r AssetRepository) GetApprovable(ctx context.Context, id string) (domain.Approvable, error) {
	return getApprovable(ctx, r.DB, domain.KindAsset, id)
}

func (r AssetRepository) MarkApproved(ctx context.Context, id, approvedBy string) (domain.Approvable, error) {
	return markApproved(ctx, r.DB, domain.KindAsset, id, approvedBy)
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var (
		a      domain.Asset
		status string
	)
	if err := row.Scan(
		&a.ID, &a.Name, &a.Description, &a.PurchaseDate, &a.PurchaseValue, &a.CurrentValue,
		&a.Condition, &a.Status, &a.CreatedBy, &status, &a.ApprovedBy, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.ApprovalStatus = domain.ApprovalStatus(status)
	return &a, nil
}
