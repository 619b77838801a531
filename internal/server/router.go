package server

import (
	"net/http"
	"time"

	"alphagrid-backend/internal/config"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	profile handler.ProfileHandler,
	income handler.IncomeHandler,
	incomeSources handler.IncomeSourceHandler,
	expenses handler.ExpenseHandler,
	assets handler.AssetHandler,
	projects handler.ProjectHandler,
	workers handler.WorkerHandler,
	salaries handler.SalaryHandler,
	reports handler.ReportHandler,
	dashboard handler.DashboardHandler,
	activity handler.ActivityLogHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// any signed-in account, temporary workers included
		profile.RegisterRoutes(pr)
		pr.Get("/reports/me", reports.UserStats)
		pr.Get("/workers/{id}/payments", workers.ListPayments)
		pr.Get("/workers/{id}/balance", workers.GetBalance)
		pr.Get("/activity-logs", activity.List)
		pr.Get("/salaries", salaries.History)

		// partner-level (co_founder/permanent_partner)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleCoFounder, domain.RolePermanentPartner))
			income.RegisterRoutes(sr)
			expenses.RegisterRoutes(sr)
			assets.RegisterRoutes(sr)
			projects.RegisterRoutes(sr)
			reports.RegisterRoutes(sr)
			dashboard.RegisterRoutes(sr)
		})
		// co_founder only
		pr.Group(func(fr chi.Router) {
			fr.Use(RequireRole(domain.RoleCoFounder))
			workers.RegisterRoutes(fr)
			salaries.RegisterRoutes(fr)
			incomeSources.RegisterRoutes(fr)
			fr.Get("/reports/annual/export", reports.ExportAnnual)
			fr.Delete("/activity-logs", activity.Clear)
		})
	})

	return r
}
