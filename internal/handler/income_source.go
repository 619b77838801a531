package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type incomeSourceStore interface {
	Create(ctx context.Context, input repository.CreateIncomeSourceInput) (*domain.IncomeSource, error)
	ListActive(ctx context.Context) ([]domain.IncomeSource, error)
	Update(ctx context.Context, id string, input repository.UpdateIncomeSourceInput) (*domain.IncomeSource, error)
}

type IncomeSourceHandler struct {
	Repo     incomeSourceStore
	Activity repository.ActivityLogRepository
}

func (h IncomeSourceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/income-sources", h.list)
	r.Post("/income-sources", h.create)
	r.Put("/income-sources/{id}", h.update)
}

func (h IncomeSourceHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name              string          `json:"name"`
		Description       string          `json:"description"`
		AllocationFormula *string         `json:"allocationFormula"`
		FeePercentage     decimal.Decimal `json:"feePercentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.FeePercentage.IsNegative() || req.FeePercentage.GreaterThan(decimal.NewFromInt(100)) {
		writeError(w, http.StatusBadRequest, "feePercentage must be between 0 and 100")
		return
	}

	source, err := h.Repo.Create(r.Context(), repository.CreateIncomeSourceInput{
		Name:              req.Name,
		Description:       req.Description,
		AllocationFormula: req.AllocationFormula,
		FeePercentage:     req.FeePercentage,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "income source name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, _ = h.Activity.Create(r.Context(), repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "create_income_source",
		EntityType: "income_source",
		EntityID:   &source.ID,
		Details:    "Created income source: " + source.Name,
	})
	writeJSON(w, http.StatusOK, incomeSourceResponse(*source))
}

func (h IncomeSourceHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, source := range items {
		resp = append(resp, incomeSourceResponse(source))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h IncomeSourceHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name              *string          `json:"name"`
		Description       *string          `json:"description"`
		AllocationFormula *string          `json:"allocationFormula"`
		FeePercentage     *decimal.Decimal `json:"feePercentage"`
		IsActive          *bool            `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FeePercentage != nil &&
		(req.FeePercentage.IsNegative() || req.FeePercentage.GreaterThan(decimal.NewFromInt(100))) {
		writeError(w, http.StatusBadRequest, "feePercentage must be between 0 and 100")
		return
	}

	source, err := h.Repo.Update(r.Context(), chi.URLParam(r, "id"), repository.UpdateIncomeSourceInput{
		Name:              req.Name,
		Description:       req.Description,
		AllocationFormula: req.AllocationFormula,
		FeePercentage:     req.FeePercentage,
		IsActive:          req.IsActive,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_, _ = h.Activity.Create(r.Context(), repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "update_income_source",
		EntityType: "income_source",
		EntityID:   &source.ID,
		Details:    "Updated income source: " + source.Name,
	})
	writeJSON(w, http.StatusOK, incomeSourceResponse(*source))
}

func incomeSourceResponse(s domain.IncomeSource) map[string]any {
	return map[string]any{
		"id":                s.ID,
		"name":              s.Name,
		"description":       s.Description,
		"allocationFormula": s.AllocationFormula,
		"feePercentage":     s.FeePercentage,
		"isActive":          s.IsActive,
	}
}
