package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApprovalStore struct {
	rec       domain.Approvable
	markErr   error
	markCalls int
}

func (f *fakeApprovalStore) GetApprovable(_ context.Context, _ string) (domain.Approvable, error) {
	return f.rec, nil
}

func (f *fakeApprovalStore) MarkApproved(_ context.Context, id, approvedBy string) (domain.Approvable, error) {
	f.markCalls++
	if f.markErr != nil {
		return domain.Approvable{}, f.markErr
	}
	updated := f.rec
	updated.ApprovalStatus = domain.ApprovalApproved
	updated.ApprovedBy = &approvedBy
	return updated, nil
}

type fakeWorkerApprovals struct {
	fakeApprovalStore
	wa *domain.WorkerApproval
}

func (f *fakeWorkerApprovals) GetByID(_ context.Context, _ string) (*domain.WorkerApproval, error) {
	return f.wa, nil
}

type fakeIdentity struct {
	applied  []bool
	snapshot domain.WorkerSnapshot
	deleted  []string
}

func (f *fakeIdentity) ApplySnapshot(_ context.Context, _ string, snap domain.WorkerSnapshot, activate bool) error {
	f.applied = append(f.applied, activate)
	f.snapshot = snap
	return nil
}

func (f *fakeIdentity) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeActivity struct {
	entries []repository.CreateActivityLogInput
	err     error
}

func (f *fakeActivity) Create(_ context.Context, in repository.CreateActivityLogInput) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.entries = append(f.entries, in)
	return "log-1", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingExpense(createdBy string) domain.Approvable {
	return domain.Approvable{
		ID:             "rec-1",
		Kind:           domain.KindExpenseRecord,
		CreatedBy:      createdBy,
		ApprovalStatus: domain.ApprovalPending,
	}
}

func approvalServiceWith(store ApprovalStore, activity *fakeActivity) ApprovalService {
	return ApprovalService{
		Records:  map[domain.RecordKind]ApprovalStore{domain.KindExpenseRecord: store},
		Activity: activity,
		Logger:   discardLogger(),
	}
}

func TestApproveSecondFounderSucceeds(t *testing.T) {
	store := &fakeApprovalStore{rec: pendingExpense("alice")}
	activity := &fakeActivity{}
	svc := approvalServiceWith(store, activity)

	updated, err := svc.Approve(context.Background(), domain.KindExpenseRecord, "rec-1",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, updated.ApprovalStatus)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, "bob", *updated.ApprovedBy)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, "approve_expense_record", activity.entries[0].Action)
}

func TestApproveRefusesCreator(t *testing.T) {
	store := &fakeApprovalStore{rec: pendingExpense("alice")}
	svc := approvalServiceWith(store, &fakeActivity{})

	_, err := svc.Approve(context.Background(), domain.KindExpenseRecord, "rec-1",
		approval.Actor{ID: "alice", Role: domain.RoleCoFounder})

	assert.ErrorIs(t, err, approval.ErrSelfApproval)
	assert.Zero(t, store.markCalls)
}

func TestApproveRefusesNonFounder(t *testing.T) {
	store := &fakeApprovalStore{rec: pendingExpense("alice")}
	svc := approvalServiceWith(store, &fakeActivity{})

	_, err := svc.Approve(context.Background(), domain.KindExpenseRecord, "rec-1",
		approval.Actor{ID: "bob", Role: domain.RolePermanentPartner})

	assert.ErrorIs(t, err, approval.ErrForbidden)
	assert.Zero(t, store.markCalls)
}

func TestApproveRefusesApprovedRecord(t *testing.T) {
	rec := pendingExpense("alice")
	rec.ApprovalStatus = domain.ApprovalApproved
	store := &fakeApprovalStore{rec: rec}
	svc := approvalServiceWith(store, &fakeActivity{})

	_, err := svc.Approve(context.Background(), domain.KindExpenseRecord, "rec-1",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	assert.ErrorIs(t, err, approval.ErrAlreadyApproved)
	assert.Zero(t, store.markCalls)
}

func TestApproveLosingRaceReportsAlreadyApproved(t *testing.T) {
	// The conditional update matched zero rows: a concurrent approval landed
	// between the read and the write.
	store := &fakeApprovalStore{rec: pendingExpense("alice"), markErr: repository.ErrNotFound}
	activity := &fakeActivity{}
	svc := approvalServiceWith(store, activity)

	_, err := svc.Approve(context.Background(), domain.KindExpenseRecord, "rec-1",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	assert.ErrorIs(t, err, approval.ErrAlreadyApproved)
	assert.Empty(t, activity.entries)
}

func TestApproveAuditFailureIsNonFatal(t *testing.T) {
	store := &fakeApprovalStore{rec: pendingExpense("alice")}
	svc := approvalServiceWith(store, &fakeActivity{err: errors.New("audit store down")})

	_, err := svc.Approve(context.Background(), domain.KindExpenseRecord, "rec-1",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	assert.NoError(t, err)
}

func TestApproveWorkerCreateActivatesAccount(t *testing.T) {
	email := "worker@example.com"
	workers := &fakeWorkerApprovals{
		fakeApprovalStore: fakeApprovalStore{rec: domain.Approvable{
			ID:             "wa-1",
			Kind:           domain.KindWorkerApproval,
			CreatedBy:      "alice",
			ApprovalStatus: domain.ApprovalPending,
		}},
		wa: &domain.WorkerApproval{
			ID:     "wa-1",
			Action: domain.WorkerActionCreate,
			UserID: "user-9",
			UserData: domain.WorkerSnapshot{
				Email:    &email,
				FullName: "New Worker",
				Username: "newworker",
				Role:     domain.RolePermanentPartner,
			},
		},
	}
	users := &fakeIdentity{}
	svc := ApprovalService{
		WorkerApprovals: workers,
		Users:           users,
		Activity:        &fakeActivity{},
		Logger:          discardLogger(),
	}

	_, err := svc.Approve(context.Background(), domain.KindWorkerApproval, "wa-1",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	require.NoError(t, err)
	require.Len(t, users.applied, 1)
	assert.True(t, users.applied[0], "create approval must activate the account")
	assert.Equal(t, "newworker", users.snapshot.Username)
}

func TestApproveWorkerUpdateKeepsActivation(t *testing.T) {
	workers := &fakeWorkerApprovals{
		fakeApprovalStore: fakeApprovalStore{rec: domain.Approvable{
			ID:             "wa-2",
			Kind:           domain.KindWorkerApproval,
			CreatedBy:      "alice",
			ApprovalStatus: domain.ApprovalPending,
		}},
		wa: &domain.WorkerApproval{
			ID:       "wa-2",
			Action:   domain.WorkerActionUpdate,
			UserID:   "user-9",
			UserData: domain.WorkerSnapshot{FullName: "Renamed", Username: "renamed", Role: domain.RoleTemporaryWorker},
		},
	}
	users := &fakeIdentity{}
	svc := ApprovalService{
		WorkerApprovals: workers,
		Users:           users,
		Activity:        &fakeActivity{},
		Logger:          discardLogger(),
	}

	_, err := svc.Approve(context.Background(), domain.KindWorkerApproval, "wa-2",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	require.NoError(t, err)
	require.Len(t, users.applied, 1)
	assert.False(t, users.applied[0])
}

func TestApproveWorkerDeleteRemovesAccount(t *testing.T) {
	workers := &fakeWorkerApprovals{
		fakeApprovalStore: fakeApprovalStore{rec: domain.Approvable{
			ID:             "wa-3",
			Kind:           domain.KindWorkerApproval,
			CreatedBy:      "alice",
			ApprovalStatus: domain.ApprovalPending,
		}},
		wa: &domain.WorkerApproval{ID: "wa-3", Action: domain.WorkerActionDelete, UserID: "user-9"},
	}
	users := &fakeIdentity{}
	svc := ApprovalService{
		WorkerApprovals: workers,
		Users:           users,
		Activity:        &fakeActivity{},
		Logger:          discardLogger(),
	}

	_, err := svc.Approve(context.Background(), domain.KindWorkerApproval, "wa-3",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	require.NoError(t, err)
	assert.Equal(t, []string{"user-9"}, users.deleted)
}

func TestApproveUnknownKind(t *testing.T) {
	svc := approvalServiceWith(&fakeApprovalStore{}, &fakeActivity{})

	_, err := svc.Approve(context.Background(), domain.RecordKind("bogus"), "rec-1",
		approval.Actor{ID: "bob", Role: domain.RoleCoFounder})

	assert.Error(t, err)
}
