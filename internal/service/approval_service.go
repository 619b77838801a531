package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
)

// ApprovalStore is the slice of a repository the approval workflow needs:
// read the approval state of a record and conditionally flip it to approved.
type ApprovalStore interface {
	GetApprovable(ctx context.Context, id string) (domain.Approvable, error)
	MarkApproved(ctx context.Context, id, approvedBy string) (domain.Approvable, error)
}

// WorkerApprovalStore additionally exposes the full approval row, since
// approving an identity mutation has side effects driven by its payload.
type WorkerApprovalStore interface {
	ApprovalStore
	GetByID(ctx context.Context, id string) (*domain.WorkerApproval, error)
}

// IdentityStore is the privileged path for mutating user rows. Only the
// approval workflow and the identity service go through it.
type IdentityStore interface {
	ApplySnapshot(ctx context.Context, userID string, snap domain.WorkerSnapshot, activate bool) error
	Delete(ctx context.Context, id string) error
}

// ActivityStore appends audit rows.
type ActivityStore interface {
	Create(ctx context.Context, in repository.CreateActivityLogInput) (string, error)
}

// ApprovalService runs the dual-approval workflow for every record kind:
// fetch, apply the shared policy, conditionally mark approved, audit.
type ApprovalService struct {
	Records         map[domain.RecordKind]ApprovalStore
	WorkerApprovals WorkerApprovalStore
	Users           IdentityStore
	Activity        ActivityStore
	Logger          *slog.Logger
}

// Approve transitions the record to approved on behalf of actor. The status
// write is a conditional update, so two racing approvals resolve to exactly
// one success; the loser sees approval.ErrAlreadyApproved.
func (s ApprovalService) Approve(ctx context.Context, kind domain.RecordKind, id string, actor approval.Actor) (domain.Approvable, error) {
	store, err := s.storeFor(kind)
	if err != nil {
		return domain.Approvable{}, err
	}

	rec, err := store.GetApprovable(ctx, id)
	if err != nil {
		return domain.Approvable{}, err
	}
	if err := approval.CanApprove(rec.ApprovalStatus, rec.CreatedBy, actor); err != nil {
		return domain.Approvable{}, err
	}

	if kind == domain.KindWorkerApproval {
		if err := s.applyWorkerAction(ctx, id); err != nil {
			return domain.Approvable{}, err
		}
	}

	updated, err := store.MarkApproved(ctx, id, actor.ID)
	if err != nil {
		// The record existed moments ago; zero rows updated means another
		// approval landed first.
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Approvable{}, approval.ErrAlreadyApproved
		}
		return domain.Approvable{}, err
	}

	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "approve_" + string(kind),
		EntityType: string(kind),
		EntityID:   &id,
		Details:    fmt.Sprintf("Approved %s: %s", kind, id),
	}); err != nil {
		s.Logger.Warn("failed to write audit entry", "kind", kind, "id", id, "err", err)
	}
	return updated, nil
}

func (s ApprovalService) storeFor(kind domain.RecordKind) (ApprovalStore, error) {
	if kind == domain.KindWorkerApproval {
		return s.WorkerApprovals, nil
	}
	store, ok := s.Records[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	return store, nil
}

// applyWorkerAction performs the identity side effect of an approved worker
// management request. Create activates the provisioned-inactive user and
// copies the snapshot onto it; update copies the snapshot without touching
// activation; delete cascades.
func (s ApprovalService) applyWorkerAction(ctx context.Context, approvalID string) error {
	wa, err := s.WorkerApprovals.GetByID(ctx, approvalID)
	if err != nil {
		return err
	}
	switch wa.Action {
	case domain.WorkerActionCreate:
		return s.Users.ApplySnapshot(ctx, wa.UserID, wa.UserData, true)
	case domain.WorkerActionUpdate:
		return s.Users.ApplySnapshot(ctx, wa.UserID, wa.UserData, false)
	case domain.WorkerActionDelete:
		return s.Users.Delete(ctx, wa.UserID)
	default:
		return fmt.Errorf("unknown worker action %q", wa.Action)
	}
}
