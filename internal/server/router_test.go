package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"alphagrid-backend/internal/config"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/handler"
	"github.com/stretchr/testify/assert"
)

func testRouter() http.Handler {
	cfg := config.Config{JWTSecret: testSecret}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, logger,
		handler.HealthHandler{}, handler.AuthHandler{}, handler.ProfileHandler{},
		handler.IncomeHandler{}, handler.IncomeSourceHandler{}, handler.ExpenseHandler{},
		handler.AssetHandler{}, handler.ProjectHandler{}, handler.WorkerHandler{},
		handler.SalaryHandler{}, handler.ReportHandler{}, handler.DashboardHandler{},
		handler.ActivityLogHandler{})
}

func TestRouteTiers(t *testing.T) {
	router := testRouter()

	// Role gates run before any handler, so a 403 means the tier held and a
	// non-403 means the request got through it.
	cases := []struct {
		name      string
		method    string
		path      string
		role      domain.UserRole
		forbidden bool
	}{
		{"reports are partner-level", http.MethodGet, "/reports/monthly", domain.RoleTemporaryWorker, true},
		{"partners read reports", http.MethodGet, "/reports/monthly", domain.RolePermanentPartner, false},
		{"own stats open to workers", http.MethodGet, "/reports/me", domain.RoleTemporaryWorker, false},
		{"export is founder-only", http.MethodGet, "/reports/annual/export", domain.RolePermanentPartner, true},
		{"founders export", http.MethodGet, "/reports/annual/export", domain.RoleCoFounder, false},
		{"income sources are founder-only", http.MethodPost, "/income-sources", domain.RolePermanentPartner, true},
		{"founders manage income sources", http.MethodPost, "/income-sources", domain.RoleCoFounder, false},
		{"salary ops are founder-only", http.MethodPost, "/salaries/calculate", domain.RolePermanentPartner, true},
		{"worker admin is founder-only", http.MethodPost, "/workers", domain.RolePermanentPartner, true},
		{"log clear is founder-only", http.MethodDelete, "/activity-logs", domain.RolePermanentPartner, true},
		{"income entry is partner-level", http.MethodPost, "/income", domain.RoleTemporaryWorker, true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, "user-1", tc.role))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if tc.forbidden {
			assert.Equal(t, http.StatusForbidden, rec.Code, tc.name)
		} else {
			assert.NotEqual(t, http.StatusForbidden, rec.Code, tc.name)
			assert.NotEqual(t, http.StatusNotFound, rec.Code, tc.name)
		}
	}
}
