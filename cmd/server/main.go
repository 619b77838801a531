package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"alphagrid-backend/internal/config"
	"alphagrid-backend/internal/db"
	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/handler"
	"alphagrid-backend/internal/repository"
	"alphagrid-backend/internal/server"
	"alphagrid-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations", "err", err)
			os.Exit(1)
		}
	}

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	incomeRepo := repository.IncomeRepository{DB: pg}
	incomeSourceRepo := repository.IncomeSourceRepository{DB: pg}
	expenseRepo := repository.ExpenseRepository{DB: pg}
	assetRepo := repository.AssetRepository{DB: pg}
	projectRepo := repository.ProjectRepository{DB: pg}
	paymentRepo := repository.WorkerPaymentRepository{DB: pg}
	workerApprovalRepo := repository.WorkerApprovalRepository{DB: pg}
	salaryRepo := repository.SalaryRepository{DB: pg}
	activityRepo := repository.ActivityLogRepository{DB: pg}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger}
	financeSvc := service.FinanceService{Income: incomeRepo, Expenses: expenseRepo, Payments: paymentRepo, Logger: logger}
	approvalSvc := service.ApprovalService{
		Records: map[domain.RecordKind]service.ApprovalStore{
			domain.KindIncomeRecord:  incomeRepo,
			domain.KindExpenseRecord: expenseRepo,
			domain.KindAsset:         assetRepo,
			domain.KindWorkerPayment: paymentRepo,
		},
		WorkerApprovals: workerApprovalRepo,
		Users:           userRepo,
		Activity:        activityRepo,
		Logger:          logger,
	}
	projectSvc := service.ProjectService{Projects: projectRepo, Activity: activityRepo, Logger: logger}
	salarySvc := service.SalaryService{Finance: financeSvc, Users: userRepo, Salaries: salaryRepo, Activity: activityRepo, Logger: logger}
	identitySvc := service.IdentityService{Users: userRepo, Approvals: workerApprovalRepo, Activity: activityRepo, Logger: logger}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	profileHandler := handler.ProfileHandler{Users: userRepo}
	incomeHandler := handler.IncomeHandler{Repo: incomeRepo, Sources: incomeSourceRepo, Approvals: approvalSvc, Activity: activityRepo}
	incomeSourceHandler := handler.IncomeSourceHandler{Repo: incomeSourceRepo, Activity: activityRepo}
	expenseHandler := handler.ExpenseHandler{Repo: expenseRepo, Approvals: approvalSvc, Activity: activityRepo}
	assetHandler := handler.AssetHandler{Repo: assetRepo, Approvals: approvalSvc, Activity: activityRepo}
	projectHandler := handler.ProjectHandler{Repo: projectRepo, Service: projectSvc}
	workerHandler := handler.WorkerHandler{
		Users:        userRepo,
		Payments:     paymentRepo,
		PendingRepo:  workerApprovalRepo,
		Identity:     identitySvc,
		ApprovalsSvc: approvalSvc,
	}
	salaryHandler := handler.SalaryHandler{Service: salarySvc}
	reportHandler := handler.ReportHandler{Finance: financeSvc}
	dashboardHandler := handler.DashboardHandler{
		Income:   incomeRepo,
		Expenses: expenseRepo,
		Assets:   assetRepo,
		Workers:  workerApprovalRepo,
		Finance:  financeSvc,
	}
	activityHandler := handler.ActivityLogHandler{Repo: activityRepo}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, profileHandler,
		incomeHandler, incomeSourceHandler, expenseHandler, assetHandler,
		projectHandler, workerHandler, salaryHandler, reportHandler,
		dashboardHandler, activityHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
