package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/server/authctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIncomeLister struct{}

func (fakeIncomeLister) List(context.Context, *domain.ApprovalStatus, int) ([]domain.IncomeRecord, error) {
	return nil, nil
}

type fakeExpenseLister struct{}

func (fakeExpenseLister) List(context.Context, *domain.ApprovalStatus, int) ([]domain.ExpenseRecord, error) {
	return nil, nil
}

type fakeAssetLister struct{}

func (fakeAssetLister) List(context.Context, int) ([]domain.Asset, error) {
	return nil, nil
}

type fakeWorkerApprovalLister struct {
	calls   []*domain.WorkerAction
	pending []domain.WorkerApproval
}

func (f *fakeWorkerApprovalLister) ListPending(_ context.Context, action *domain.WorkerAction) ([]domain.WorkerApproval, error) {
	f.calls = append(f.calls, action)
	return f.pending, nil
}

func decodePendingFeed(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestPendingFeedShowsWorkerApprovalsToFoundersOnly(t *testing.T) {
	lister := &fakeWorkerApprovalLister{pending: []domain.WorkerApproval{{
		ID:             "wa-1",
		Action:         domain.WorkerActionCreate,
		UserID:         "user-9",
		CreatedBy:      "user-2",
		ApprovalStatus: domain.ApprovalPending,
	}}}
	h := DashboardHandler{
		Income:   fakeIncomeLister{},
		Expenses: fakeExpenseLister{},
		Assets:   fakeAssetLister{},
		Workers:  lister,
	}
	founder := authctx.CurrentUser{ID: "user-1", Username: "amir", Role: domain.RoleCoFounder}

	rec := httptest.NewRecorder()
	h.pending(rec, authedRequest(http.MethodGet, "/dashboard/pending", "", founder))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodePendingFeed(t, rec)

	var approvals []map[string]any
	require.NoError(t, json.Unmarshal(data["workerManagement"], &approvals))
	require.Len(t, approvals, 1)
	assert.Equal(t, "wa-1", approvals[0]["id"])

	// Only new-worker requests belong on the feed.
	require.Len(t, lister.calls, 1)
	require.NotNil(t, lister.calls[0])
	assert.Equal(t, domain.WorkerActionCreate, *lister.calls[0])
}

func TestPendingFeedHidesWorkerApprovalsFromPartners(t *testing.T) {
	lister := &fakeWorkerApprovalLister{pending: []domain.WorkerApproval{{ID: "wa-1"}}}
	h := DashboardHandler{
		Income:   fakeIncomeLister{},
		Expenses: fakeExpenseLister{},
		Assets:   fakeAssetLister{},
		Workers:  lister,
	}
	partner := authctx.CurrentUser{ID: "user-2", Username: "sara", Role: domain.RolePermanentPartner}

	rec := httptest.NewRecorder()
	h.pending(rec, authedRequest(http.MethodGet, "/dashboard/pending", "", partner))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodePendingFeed(t, rec)

	var approvals []map[string]any
	require.NoError(t, json.Unmarshal(data["workerManagement"], &approvals))
	assert.Empty(t, approvals)
	assert.Empty(t, lister.calls)
}
