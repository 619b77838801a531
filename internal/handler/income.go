package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"alphagrid-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type IncomeHandler struct {
	Repo      repository.IncomeRepository
	Sources   repository.IncomeSourceRepository
	Approvals service.ApprovalService
	Activity  repository.ActivityLogRepository
}

func (h IncomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/income", h.list)
	r.Post("/income", h.create)
	r.Post("/income/{id}/approve", h.approve)
}

func (h IncomeHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		IncomeSourceID  string          `json:"incomeSourceId"`
		Amount          decimal.Decimal `json:"amount"`
		Description     string          `json:"description"`
		TransactionDate string          `json:"transactionDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.IncomeSourceID == "" {
		writeError(w, http.StatusBadRequest, "incomeSourceId is required")
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	txDate, err := time.Parse(dateLayout, req.TransactionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transactionDate")
		return
	}

	source, err := h.Sources.GetByID(r.Context(), req.IncomeSourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown income source")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !source.IsActive {
		writeError(w, http.StatusBadRequest, "income source is inactive")
		return
	}

	// Deduct the source fee up front so aggregation can rely on net_amount.
	var net *decimal.Decimal
	if source.FeePercentage.IsPositive() {
		n := req.Amount.Sub(req.Amount.Mul(source.FeePercentage).Div(decimal.NewFromInt(100)))
		net = &n
	}

	rec, err := h.Repo.Create(r.Context(), repository.CreateIncomeInput{
		IncomeSourceID:  req.IncomeSourceID,
		Amount:          req.Amount,
		NetAmount:       net,
		Description:     req.Description,
		TransactionDate: txDate,
		CreatedBy:       actor.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, _ = h.Activity.Create(r.Context(), repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "create_income_record",
		EntityType: string(domain.KindIncomeRecord),
		EntityID:   &rec.ID,
		Details:    "Created income record: " + rec.Amount.String(),
	})
	writeJSON(w, http.StatusOK, incomeResponse(*rec))
}

func (h IncomeHandler) list(w http.ResponseWriter, r *http.Request) {
	var status *domain.ApprovalStatus
	switch raw := r.URL.Query().Get("status"); raw {
	case "":
	case "pending", "approved", "rejected":
		s := domain.ApprovalStatus(raw)
		status = &s
	default:
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	items, err := h.Repo.List(r.Context(), status, 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rec := range items {
		resp = append(resp, incomeResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h IncomeHandler) approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	updated, err := h.Approvals.Approve(r.Context(), domain.KindIncomeRecord, chi.URLParam(r, "id"), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvableResponse(updated))
}

func incomeResponse(rec domain.IncomeRecord) map[string]any {
	return map[string]any{
		"id":              rec.ID,
		"incomeSourceId":  rec.IncomeSourceID,
		"sourceName":      rec.SourceName,
		"feePercentage":   rec.FeePercentage,
		"amount":          rec.Amount,
		"netAmount":       rec.NetAmount,
		"description":     rec.Description,
		"transactionDate": rec.TransactionDate.Format(dateLayout),
		"createdBy":       rec.CreatedBy,
		"approvalStatus":  string(rec.ApprovalStatus),
		"approvedBy":      rec.ApprovedBy,
	}
}

func approvableResponse(a domain.Approvable) map[string]any {
	return map[string]any{
		"id":             a.ID,
		"kind":           string(a.Kind),
		"approvalStatus": string(a.ApprovalStatus),
		"approvedBy":     a.ApprovedBy,
		"updatedAt":      a.UpdatedAt,
	}
}
