package service

import (
	"context"
	"testing"

	"alphagrid-backend/internal/approval"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjectStore struct {
	project      domain.Project
	payments     []domain.WorkerPayment
	cancelCalls  int
	assignCalls  int
	completeCall int
}

func (f *fakeProjectStore) Create(_ context.Context, in repository.CreateProjectInput) (*domain.Project, error) {
	p := domain.Project{ID: "proj-1", Name: in.Name, TotalValue: in.TotalValue, Status: domain.ProjectActive, CreatedBy: in.CreatedBy}
	return &p, nil
}

func (f *fakeProjectStore) GetByID(_ context.Context, _ string) (*domain.Project, error) {
	p := f.project
	return &p, nil
}

func (f *fakeProjectStore) List(_ context.Context, _ int) ([]domain.Project, error) {
	return []domain.Project{f.project}, nil
}

func (f *fakeProjectStore) AssignWorker(_ context.Context, projectID, workerID string, share decimal.Decimal) (*domain.ProjectWorker, error) {
	f.assignCalls++
	return &domain.ProjectWorker{ProjectID: projectID, WorkerID: workerID, SharePercentage: share}, nil
}

func (f *fakeProjectStore) Complete(_ context.Context, _, _ string) (*domain.Project, []domain.WorkerPayment, error) {
	f.completeCall++
	p := f.project
	p.Status = domain.ProjectCompleted
	return &p, f.payments, nil
}

func (f *fakeProjectStore) Cancel(_ context.Context, _ string) (*domain.Project, error) {
	f.cancelCalls++
	p := f.project
	p.Status = domain.ProjectCancelled
	return &p, nil
}

func activeProject(name string) domain.Project {
	return domain.Project{ID: "proj-1", Name: name, TotalValue: dec("1000"), Status: domain.ProjectActive, CreatedBy: "alice"}
}

func TestAssignWorkerRefusesTerminalStates(t *testing.T) {
	cases := []struct {
		status domain.ProjectStatus
		want   error
	}{
		{domain.ProjectCompleted, domain.ErrProjectCompleted},
		{domain.ProjectCancelled, domain.ErrProjectCancelled},
	}
	for _, tc := range cases {
		project := activeProject("Website Revamp")
		project.Status = tc.status
		store := &fakeProjectStore{project: project}
		svc := ProjectService{Projects: store, Activity: &fakeActivity{}, Logger: discardLogger()}

		_, err := svc.AssignWorker(context.Background(), founderActor("alice"), "proj-1", "worker-1", dec("30"))
		assert.ErrorIs(t, err, tc.want)
		assert.Zero(t, store.assignCalls)
	}
}

func TestAssignWorkerOnActiveProject(t *testing.T) {
	store := &fakeProjectStore{project: activeProject("Website Revamp")}
	activity := &fakeActivity{}
	svc := ProjectService{Projects: store, Activity: activity, Logger: discardLogger()}

	pw, err := svc.AssignWorker(context.Background(), founderActor("alice"), "proj-1", "worker-1", dec("30"))
	require.NoError(t, err)
	assert.True(t, pw.SharePercentage.Equal(dec("30")))
	require.Len(t, activity.entries, 1)
	assert.Equal(t, "assign_worker", activity.entries[0].Action)
}

func TestCompleteCreatesPaymentsAndAudits(t *testing.T) {
	store := &fakeProjectStore{
		project: activeProject("Website Revamp"),
		payments: []domain.WorkerPayment{
			{WorkerID: "worker-1", Amount: dec("300")},
			{WorkerID: "worker-2", Amount: dec("400")},
		},
	}
	activity := &fakeActivity{}
	svc := ProjectService{Projects: store, Activity: activity, Logger: discardLogger()}

	project, payments, err := svc.Complete(context.Background(), founderActor("alice"), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectCompleted, project.Status)
	require.Len(t, payments, 2)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, "complete_project", activity.entries[0].Action)
}

func TestCompleteRefusesTerminalStates(t *testing.T) {
	cases := []struct {
		status domain.ProjectStatus
		want   error
	}{
		{domain.ProjectCompleted, domain.ErrProjectCompleted},
		{domain.ProjectCancelled, domain.ErrProjectCancelled},
	}
	for _, tc := range cases {
		project := activeProject("Website Revamp")
		project.Status = tc.status
		store := &fakeProjectStore{project: project}
		svc := ProjectService{Projects: store, Activity: &fakeActivity{}, Logger: discardLogger()}

		_, _, err := svc.Complete(context.Background(), founderActor("alice"), "proj-1")
		assert.ErrorIs(t, err, tc.want)
		assert.Zero(t, store.completeCall, "no payment run for a terminal project")
	}
}

func TestCancelRefusesTerminalStates(t *testing.T) {
	cases := []struct {
		status domain.ProjectStatus
		want   error
	}{
		{domain.ProjectCompleted, domain.ErrProjectCompleted},
		{domain.ProjectCancelled, domain.ErrProjectCancelled},
	}
	for _, tc := range cases {
		project := activeProject("Website Revamp")
		project.Status = tc.status
		store := &fakeProjectStore{project: project}
		svc := ProjectService{Projects: store, Activity: &fakeActivity{}, Logger: discardLogger()}

		// Even a matching confirmation cannot revive a terminal project.
		_, err := svc.Cancel(context.Background(), founderActor("alice"), "proj-1", "Website Revamp")
		assert.ErrorIs(t, err, tc.want)
		assert.Zero(t, store.cancelCalls)
	}
}

func TestCancelRequiresFounder(t *testing.T) {
	store := &fakeProjectStore{project: activeProject("Website Revamp")}
	svc := ProjectService{Projects: store, Activity: &fakeActivity{}, Logger: discardLogger()}

	_, err := svc.Cancel(context.Background(),
		approval.Actor{ID: "bob", Role: domain.RolePermanentPartner}, "proj-1", "Website Revamp")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, store.cancelCalls)
}

func TestCancelRequiresExactConfirmation(t *testing.T) {
	store := &fakeProjectStore{project: activeProject("Website Revamp")}
	svc := ProjectService{Projects: store, Activity: &fakeActivity{}, Logger: discardLogger()}

	_, err := svc.Cancel(context.Background(), founderActor("alice"), "proj-1", "website revamp")
	assert.ErrorIs(t, err, ErrConfirmationMismatch)
	assert.Zero(t, store.cancelCalls)

	project, err := svc.Cancel(context.Background(), founderActor("alice"), "proj-1", "Website Revamp")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectCancelled, project.Status)
	assert.Equal(t, 1, store.cancelCalls)
}
