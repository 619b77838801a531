package handler

import (
	"context"
	"net/http"
	"time"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type pendingIncomeLister interface {
	List(ctx context.Context, status *domain.ApprovalStatus, limit int) ([]domain.IncomeRecord, error)
}

type pendingExpenseLister interface {
	List(ctx context.Context, status *domain.ApprovalStatus, limit int) ([]domain.ExpenseRecord, error)
}

type assetLister interface {
	List(ctx context.Context, limit int) ([]domain.Asset, error)
}

type pendingWorkerApprovalLister interface {
	ListPending(ctx context.Context, action *domain.WorkerAction) ([]domain.WorkerApproval, error)
}

type monthlyProfitReader interface {
	MonthlyProfit(ctx context.Context, year, month int) (service.MonthlyProfit, error)
}

type DashboardHandler struct {
	Income   pendingIncomeLister
	Expenses pendingExpenseLister
	Assets   assetLister
	Workers  pendingWorkerApprovalLister
	Finance  monthlyProfitReader
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.overview)
	r.Get("/dashboard/pending", h.pending)
}

func (h DashboardHandler) overview(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	profit, err := h.Finance.MonthlyProfit(r.Context(), now.Year(), int(now.Month()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":          profit.Year,
		"month":         profit.Month,
		"totalIncome":   profit.TotalIncome,
		"totalExpenses": profit.TotalExpenses,
		"profit":        profit.Profit,
	})
}

func (h DashboardHandler) pending(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	pending := domain.ApprovalPending

	income, err := h.Income.List(r.Context(), &pending, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	expenses, err := h.Expenses.List(r.Context(), &pending, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	assets, err := h.Assets.List(r.Context(), 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Worker-management approvals can only be acted on by co-founders, so
	// other roles get an empty slice. Update and delete requests stay off
	// the feed; they go through the approvals listing instead.
	var workerApprovals []domain.WorkerApproval
	if actor.Role == domain.RoleCoFounder {
		action := domain.WorkerActionCreate
		workerApprovals, err = h.Workers.ListPending(r.Context(), &action)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	incomeResp := make([]map[string]any, 0, len(income))
	for _, rec := range income {
		incomeResp = append(incomeResp, incomeResponse(rec))
	}
	expenseResp := make([]map[string]any, 0, len(expenses))
	for _, rec := range expenses {
		expenseResp = append(expenseResp, expenseResponse(rec))
	}
	assetResp := make([]map[string]any, 0)
	for _, a := range assets {
		if a.ApprovalStatus == domain.ApprovalPending {
			assetResp = append(assetResp, assetResponse(a))
		}
	}
	workerResp := make([]map[string]any, 0, len(workerApprovals))
	for _, wa := range workerApprovals {
		workerResp = append(workerResp, workerApprovalResponse(wa))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"income":           incomeResp,
		"expenses":         expenseResp,
		"assets":           assetResp,
		"workerManagement": workerResp,
		"totalPending":     len(incomeResp) + len(expenseResp) + len(assetResp) + len(workerResp),
	})
}
