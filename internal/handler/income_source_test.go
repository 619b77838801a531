package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"alphagrid-backend/internal/server/authctx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type fakeIncomeSourceStore struct {
	createErr error
}

func (f fakeIncomeSourceStore) Create(context.Context, repository.CreateIncomeSourceInput) (*domain.IncomeSource, error) {
	return nil, f.createErr
}

func (f fakeIncomeSourceStore) ListActive(context.Context) ([]domain.IncomeSource, error) {
	return nil, nil
}

func (f fakeIncomeSourceStore) Update(context.Context, string, repository.UpdateIncomeSourceInput) (*domain.IncomeSource, error) {
	return nil, nil
}

func TestCreateIncomeSourceDuplicateNameConflicts(t *testing.T) {
	h := IncomeSourceHandler{Repo: fakeIncomeSourceStore{
		createErr: &pgconn.PgError{Code: "23505", ConstraintName: "income_sources_name_key"},
	}}
	founder := authctx.CurrentUser{ID: "user-1", Username: "amir", Role: domain.RoleCoFounder}

	rec := httptest.NewRecorder()
	body := `{"name":"YouTube","feePercentage":"30"}`
	h.create(rec, authedRequest(http.MethodPost, "/income-sources", body, founder))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "income source name already exists")
}

func TestCreateIncomeSourceValidatesFee(t *testing.T) {
	h := IncomeSourceHandler{Repo: fakeIncomeSourceStore{}}
	founder := authctx.CurrentUser{ID: "user-1", Username: "amir", Role: domain.RoleCoFounder}

	rec := httptest.NewRecorder()
	body := `{"name":"YouTube","feePercentage":"130"}`
	h.create(rec, authedRequest(http.MethodPost, "/income-sources", body, founder))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "feePercentage must be between 0 and 100")
}
