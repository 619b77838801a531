package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidInput marks a request that fails identity validation rules.
var ErrInvalidInput = errors.New("invalid input")

type UserAdminStore interface {
	Create(ctx context.Context, p repository.CreateUserParams) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateWorker(ctx context.Context, userID string, p repository.UpdateWorkerParams) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type WorkerApprovalWriter interface {
	Create(ctx context.Context, in repository.CreateWorkerApprovalInput) (*domain.WorkerApproval, error)
}

// IdentityService is the privileged trust boundary for user-account
// mutations. Every caller goes through its role checks and every mutation is
// audited; nothing else in the application writes user identity rows.
type IdentityService struct {
	Users     UserAdminStore
	Approvals WorkerApprovalWriter
	Activity  ActivityStore
	Logger    *slog.Logger
}

type CreateWorkerInput struct {
	Email    *string
	FullName string
	Username string
	Password string
	Role     domain.UserRole
}

// CreateWorker provisions an inactive worker account and files a pending
// create approval carrying the identity snapshot. The account only becomes
// active when a second co-founder approves.
func (s IdentityService) CreateWorker(ctx context.Context, actor approval.Actor, in CreateWorkerInput) (*domain.WorkerApproval, error) {
	if actor.Role != domain.RoleCoFounder {
		return nil, domain.ErrForbidden
	}
	if in.Role != domain.RolePermanentPartner && in.Role != domain.RoleTemporaryWorker {
		return nil, fmt.Errorf("%w: role must be permanent_partner or temporary_worker", ErrInvalidInput)
	}
	if in.FullName == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: full name, username and password are required", ErrInvalidInput)
	}
	switch in.Role {
	case domain.RolePermanentPartner:
		if in.Email == nil || *in.Email == "" {
			return nil, fmt.Errorf("%w: email is required for permanent partners", ErrInvalidInput)
		}
	case domain.RoleTemporaryWorker:
		// Temporary workers have no email-based login.
		in.Email = nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	user, err := s.Users.Create(ctx, repository.CreateUserParams{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		Role:         in.Role,
		IsActive:     false,
		PasswordHash: &hashStr,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: username or email already in use", ErrInvalidInput)
		}
		return nil, err
	}

	wa, err := s.Approvals.Create(ctx, repository.CreateWorkerApprovalInput{
		Action: domain.WorkerActionCreate,
		UserID: user.ID,
		UserData: domain.WorkerSnapshot{
			Email:    in.Email,
			FullName: in.FullName,
			Username: in.Username,
			Role:     in.Role,
		},
		CreatedBy: actor.ID,
	})
	if err != nil {
		// Roll back the provisioned account so a retry is clean.
		if delErr := s.Users.Delete(ctx, user.ID); delErr != nil {
			s.Logger.Error("failed to clean up provisioned user", "user", user.ID, "err", delErr)
		}
		return nil, err
	}

	s.audit(ctx, actor.ID, "create_worker_account", "worker_management", wa.ID,
		fmt.Sprintf("Requested worker account %s (%s)", in.Username, in.Role))
	return wa, nil
}

type UpdateWorkerInput struct {
	FullName *string
	Email    *string
	Username *string
	Role     *domain.UserRole
}

// UpdateWorker edits a worker account in place. Co-founder accounts are off
// limits.
func (s IdentityService) UpdateWorker(ctx context.Context, actor approval.Actor, workerID string, in UpdateWorkerInput) (*domain.User, error) {
	if actor.Role != domain.RoleCoFounder {
		return nil, domain.ErrForbidden
	}
	target, err := s.Users.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleCoFounder {
		return nil, fmt.Errorf("%w: cannot modify co-founder accounts", domain.ErrForbidden)
	}
	if in.Role != nil && *in.Role != domain.RolePermanentPartner && *in.Role != domain.RoleTemporaryWorker {
		return nil, fmt.Errorf("%w: role must be permanent_partner or temporary_worker", ErrInvalidInput)
	}

	updated, err := s.Users.UpdateWorker(ctx, workerID, repository.UpdateWorkerParams{
		FullName: in.FullName,
		Email:    in.Email,
		Username: in.Username,
		Role:     in.Role,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: username or email already in use", ErrInvalidInput)
		}
		return nil, err
	}

	s.audit(ctx, actor.ID, "update_worker", "user", workerID,
		fmt.Sprintf("Updated worker: %s", updated.FullName))
	return updated, nil
}

// DeleteWorker removes a worker account. Co-founder accounts and the
// caller's own account are refused.
func (s IdentityService) DeleteWorker(ctx context.Context, actor approval.Actor, workerID string) error {
	if actor.Role != domain.RoleCoFounder {
		return domain.ErrForbidden
	}
	if workerID == actor.ID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrForbidden)
	}
	target, err := s.Users.GetByID(ctx, workerID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleCoFounder {
		return fmt.Errorf("%w: cannot delete co-founder accounts", domain.ErrForbidden)
	}

	if err := s.Users.Delete(ctx, workerID); err != nil {
		return err
	}
	s.audit(ctx, actor.ID, "delete_worker", "user", workerID,
		fmt.Sprintf("Deleted worker: %s", target.FullName))
	return nil
}

func (s IdentityService) audit(ctx context.Context, actorID, action, entityType, entityID, details string) {
	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		UserID:     &actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Details:    details,
	}); err != nil {
		s.Logger.Warn("failed to write audit entry", "action", action, "err", err)
	}
}
