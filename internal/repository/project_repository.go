package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ProjectRepository struct {
	DB *db.Postgres
}

type CreateProjectInput struct {
	Name        string
	Description string
	TotalValue  decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedBy   string
}

const projectColumns = `
	id, name, description, total_value, start_date, end_date, status, created_by, created_at, updated_at
`

func (r ProjectRepository) Create(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO projects (id, name, description, total_value, start_date, end_date, status, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,'active',$7, now(), now())
		RETURNING `+projectColumns+`
	`, uuid.NewString(), in.Name, in.Description, in.TotalValue, dateOrNil(in.StartDate), dateOrNil(in.EndDate), in.CreatedBy)
	return scanProject(row)
}

func (r ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id=$1
	`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.attachWorkers(ctx, []*domain.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r ProjectRepository) List(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Project, len(projects))
	for i := range projects {
		refs[i] = &projects[i]
	}
	if err := r.attachWorkers(ctx, refs); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r ProjectRepository) AssignWorker(ctx context.Context, projectID, workerID string, share decimal.Decimal) (*domain.ProjectWorker, error) {
	var pw domain.ProjectWorker
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO project_workers (id, project_id, worker_id, worker_share_percentage, created_at)
		VALUES ($1,$2,$3,$4, now())
		RETURNING id, project_id, worker_id, worker_share_percentage, created_at
	`, uuid.NewString(), projectID, workerID, share).Scan(
		&pw.ID, &pw.ProjectID, &pw.WorkerID, &pw.SharePercentage, &pw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pw, nil
}

// Complete marks the project completed and creates one pending worker payment
// per assignment, all within a single transaction. The project row is locked
// so concurrent completion attempts serialize on the status check.
func (r ProjectRepository) Complete(ctx context.Context, projectID, actorID string) (*domain.Project, []domain.WorkerPayment, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id=$1
		FOR UPDATE
	`, projectID)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	switch project.Status {
	case domain.ProjectCompleted:
		return nil, nil, domain.ErrProjectCompleted
	case domain.ProjectCancelled:
		return nil, nil, domain.ErrProjectCancelled
	}

	workerRows, err := tx.Query(ctx, `
		SELECT id, project_id, worker_id, worker_share_percentage, created_at
		FROM project_workers
		WHERE project_id=$1
	`, projectID)
	if err != nil {
		return nil, nil, err
	}
	var workers []domain.ProjectWorker
	for workerRows.Next() {
		var pw domain.ProjectWorker
		if err := workerRows.Scan(&pw.ID, &pw.ProjectID, &pw.WorkerID, &pw.SharePercentage, &pw.CreatedAt); err != nil {
			workerRows.Close()
			return nil, nil, err
		}
		workers = append(workers, pw)
	}
	workerRows.Close()
	if err := workerRows.Err(); err != nil {
		return nil, nil, err
	}

	hundred := decimal.NewFromInt(100)
	today := time.Now().Format("2006-01-02")
	var payments []domain.WorkerPayment
	for _, pw := range workers {
		amount := project.TotalValue.Mul(pw.SharePercentage).Div(hundred)
		var p domain.WorkerPayment
		var status string
		err := tx.QueryRow(ctx, `
			INSERT INTO worker_payments
				(id, worker_id, project_id, amount, payment_date, description, created_by, approval_status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,'pending', now(), now())
			RETURNING id, worker_id, project_id, amount, payment_date, description, created_by, approval_status, approved_by, created_at, updated_at
		`, uuid.NewString(), pw.WorkerID, projectID, amount, today,
			fmt.Sprintf("Payment for project: %s", project.Name), actorID).Scan(
			&p.ID, &p.WorkerID, &p.ProjectID, &p.Amount, &p.PaymentDate, &p.Description,
			&p.CreatedBy, &status, &p.ApprovedBy, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, nil, err
		}
		p.ApprovalStatus = domain.ApprovalStatus(status)
		p.ProjectName = project.Name
		payments = append(payments, p)
	}

	row = tx.QueryRow(ctx, `
		UPDATE projects
		SET status='completed', updated_at=now()
		WHERE id=$1
		RETURNING `+projectColumns+`
	`, projectID)
	updated, err := scanProject(row)
	if err != nil {
		return nil, nil, err
	}
	updated.Workers = workers

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return updated, payments, nil
}

// Cancel transitions an active project to cancelled. Terminal states are
// reported as distinct errors.
func (r ProjectRepository) Cancel(ctx context.Context, projectID string) (*domain.Project, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE projects
		SET status='cancelled', updated_at=now()
		WHERE id=$1 AND status='active'
		RETURNING `+projectColumns+`
	`, projectID)
	updated, err := scanProject(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Nothing matched: distinguish missing from terminal.
	current, err := r.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.ProjectCompleted {
		return nil, domain.ErrProjectCompleted
	}
	return nil, domain.ErrProjectCancelled
}

func (r ProjectRepository) attachWorkers(ctx context.Context, projects []*domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]string, 0, len(projects))
	byID := make(map[string]*domain.Project, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT pw.id, pw.project_id, pw.worker_id, u.full_name, pw.worker_share_percentage, pw.created_at
		FROM project_workers pw
		JOIN users u ON u.id = pw.worker_id
		WHERE pw.project_id = ANY($1)
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var pw domain.ProjectWorker
		if err := rows.Scan(&pw.ID, &pw.ProjectID, &pw.WorkerID, &pw.WorkerName, &pw.SharePercentage, &pw.CreatedAt); err != nil {
			return err
		}
		if p, ok := byID[pw.ProjectID]; ok {
			p.Workers = append(p.Workers, pw)
		}
	}
	return rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p      domain.Project
		status string
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.TotalValue, &p.StartDate, &p.EndDate,
		&status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	return &p, nil
}

func dateOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	d := t.Format("2006-01-02")
	return &d
}
