package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"github.com/shopspring/decimal"
)

// ErrConfirmationMismatch is returned when the cancellation confirmation
// text does not match the project name.
var ErrConfirmationMismatch = errors.New("confirmation text does not match project name")

type ProjectStore interface {
	Create(ctx context.Context, in repository.CreateProjectInput) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, limit int) ([]domain.Project, error)
	AssignWorker(ctx context.Context, projectID, workerID string, share decimal.Decimal) (*domain.ProjectWorker, error)
	Complete(ctx context.Context, projectID, actorID string) (*domain.Project, []domain.WorkerPayment, error)
	Cancel(ctx context.Context, projectID string) (*domain.Project, error)
}

// ProjectService owns project lifecycle transitions. Completed and cancelled
// are terminal.
type ProjectService struct {
	Projects ProjectStore
	Activity ActivityStore
	Logger   *slog.Logger
}

func (s ProjectService) Create(ctx context.Context, actor approval.Actor, in repository.CreateProjectInput) (*domain.Project, error) {
	in.CreatedBy = actor.ID
	project, err := s.Projects.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor.ID, "create_project", project.ID,
		fmt.Sprintf("Created project %s (%s)", project.Name, project.TotalValue))
	return project, nil
}

func (s ProjectService) AssignWorker(ctx context.Context, actor approval.Actor, projectID, workerID string, share decimal.Decimal) (*domain.ProjectWorker, error) {
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := terminalStateErr(project.Status); err != nil {
		return nil, err
	}
	pw, err := s.Projects.AssignWorker(ctx, projectID, workerID, share)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor.ID, "assign_worker", projectID,
		fmt.Sprintf("Assigned worker %s at %s%%", workerID, share))
	return pw, nil
}

// Complete closes the project and creates one pending payment per assigned
// worker, sized by the worker's share of the project value.
func (s ProjectService) Complete(ctx context.Context, actor approval.Actor, projectID string) (*domain.Project, []domain.WorkerPayment, error) {
	current, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if err := terminalStateErr(current.Status); err != nil {
		return nil, nil, err
	}
	project, payments, err := s.Projects.Complete(ctx, projectID, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	s.audit(ctx, actor.ID, "complete_project", projectID,
		fmt.Sprintf("Completed project %s, %d payments created", project.Name, len(payments)))
	return project, payments, nil
}

// Cancel requires the caller to re-type the project name, and refuses
// projects that already reached a terminal state.
func (s ProjectService) Cancel(ctx context.Context, actor approval.Actor, projectID, confirmation string) (*domain.Project, error) {
	if actor.Role != domain.RoleCoFounder {
		return nil, domain.ErrForbidden
	}
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := terminalStateErr(project.Status); err != nil {
		return nil, err
	}
	if confirmation != project.Name {
		return nil, ErrConfirmationMismatch
	}
	updated, err := s.Projects.Cancel(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actor.ID, "cancel_project", projectID,
		fmt.Sprintf("Cancelled project %s", project.Name))
	return updated, nil
}

// terminalStateErr reports why a completed or cancelled project refuses
// further transitions. The repository enforces the same rule in SQL; checking
// here gives callers the precise error before any write is attempted.
func terminalStateErr(status domain.ProjectStatus) error {
	switch status {
	case domain.ProjectCompleted:
		return domain.ErrProjectCompleted
	case domain.ProjectCancelled:
		return domain.ErrProjectCancelled
	}
	return nil
}

func (s ProjectService) audit(ctx context.Context, actorID, action, entityID, details string) {
	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		UserID:     &actorID,
		Action:     action,
		EntityType: "project",
		EntityID:   &entityID,
		Details:    details,
	}); err != nil {
		s.Logger.Warn("failed to write audit entry", "action", action, "err", err)
	}
}
