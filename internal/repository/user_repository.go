package repository

import (
	"context"
	"errors"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	Email        *string
	Username     string
	FullName     string
	Role         domain.UserRole
	IsActive     bool
	PasswordHash *string
}

func (r UserRepository) Create(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, username, full_name, role, is_active, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
		RETURNING id, email, username, full_name, role, is_active, profile_photo_url, password_hash, created_at, updated_at
	`
	row := r.DB.Pool.QueryRow(ctx, query, uuid.NewString(), p.Email, p.Username, p.FullName, string(p.Role), p.IsActive, p.PasswordHash)
	return scanUser(row)
}

func (r UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, username, full_name, role, is_active, profile_photo_url, password_hash, created_at, updated_at
		FROM users
		WHERE id=$1
	`
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByLogin resolves a user by username, falling back to email. Permanent
// partners and co-founders sign in with email, temporary workers have none.
func (r UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `
		SELECT id, email, username, full_name, role, is_active, profile_photo_url, password_hash, created_at, updated_at
		FROM users
		WHERE username=$1 OR email=$1
	`
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, email, username, full_name, role, is_active, profile_photo_url, password_hash, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ActiveByRole returns active users holding the given role.
func (r UserRepository) ActiveByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, email, username, full_name, role, is_active, profile_photo_url, password_hash, created_at, updated_at
		FROM users
		WHERE role=$1 AND is_active=true
		ORDER BY full_name ASC
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ApplySnapshot copies an approved identity snapshot onto the live user row.
// When activate is set the user also transitions to active.
func (r UserRepository) ApplySnapshot(ctx context.Context, userID string, snap domain.WorkerSnapshot, activate bool) error {
	var tag int64
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE users
		SET email=$2, full_name=$3, username=$4, role=$5,
		    is_active = CASE WHEN $6 THEN true ELSE is_active END,
		    updated_at = now()
		WHERE id=$1
		RETURNING 1
	`, userID, snap.Email, snap.FullName, snap.Username, string(snap.Role), activate).Scan(&tag)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type UpdateProfileParams struct {
	FullName        *string
	ProfilePhotoURL *string
}

func (r UserRepository) UpdateProfile(ctx context.Context, userID string, p UpdateProfileParams) (*domain.User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    profile_photo_url = COALESCE($3, profile_photo_url),
		    updated_at = now()
		WHERE id=$1
		RETURNING id, email, username, full_name, role, is_active, profile_photo_url, password_hash, created_at, updated_at
	`
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, userID, p.FullName, p.ProfilePhotoURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateWorkerParams struct {
	FullName *string
	Email    *string
	Username *string
	Role     *domain.UserRole
}

// UpdateWorker overwrites identity fields on a worker account.
func (r UserRepository) UpdateWorker(ctx context.Context, userID string, p UpdateWorkerParams) (*domain.User, error) {
	query := `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    username = COALESCE($4, username),
		    role = COALESCE($5, role),
		    updated_at = now()
		WHERE id=$1
		RETURNING id, email, username, full_name, role, is_active, profile_photo_url, password_hash, created_at, updated_at
	`
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, userID, p.FullName, p.Email, p.Username, (*string)(p.Role)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the user row. Dependent rows cascade per schema.
func (r UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FullName,
		&role,
		&u.IsActive,
		&u.ProfilePhotoURL,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}
