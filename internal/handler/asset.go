package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"alphagrid-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type AssetHandler struct {
	Repo      repository.AssetRepository
	Approvals service.ApprovalService
	Activity  repository.ActivityLogRepository
}

func (h AssetHandler) RegisterRoutes(r chi.Router) {
	r.Get("/assets", h.list)
	r.Post("/assets", h.create)
	r.Put("/assets/{id}", h.update)
	r.Post("/assets/{id}/approve", h.approve)
}

func (h AssetHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name          string          `json:"name"`
		Description   string          `json:"description"`
		PurchaseDate  *string         `json:"purchaseDate"`
		PurchaseValue decimal.Decimal `json:"purchaseValue"`
		CurrentValue  decimal.Decimal `json:"currentValue"`
		Condition     string          `json:"condition"`
		Status        string          `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.PurchaseValue.IsPositive() {
		writeError(w, http.StatusBadRequest, "purchaseValue must be positive")
		return
	}
	if req.CurrentValue.IsNegative() {
		writeError(w, http.StatusBadRequest, "currentValue must not be negative")
		return
	}
	var purchaseDate *time.Time
	if req.PurchaseDate != nil && *req.PurchaseDate != "" {
		parsed, err := time.Parse(dateLayout, *req.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid purchaseDate")
			return
		}
		purchaseDate = &parsed
	}
	if req.Condition == "" {
		req.Condition = "good"
	}
	if req.Status == "" {
		req.Status = "active"
	}

	asset, err := h.Repo.Create(r.Context(), repository.CreateAssetInput{
		Name:          req.Name,
		Description:   req.Description,
		PurchaseDate:  purchaseDate,
		PurchaseValue: req.PurchaseValue,
		CurrentValue:  req.CurrentValue,
		Condition:     req.Condition,
		Status:        req.Status,
		CreatedBy:     actor.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, _ = h.Activity.Create(r.Context(), repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "create_asset",
		EntityType: string(domain.KindAsset),
		EntityID:   &asset.ID,
		Details:    "Created asset: " + asset.Name,
	})
	writeJSON(w, http.StatusOK, assetResponse(*asset))
}

func (h AssetHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, asset := range items {
		resp = append(resp, assetResponse(asset))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AssetHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name         *string          `json:"name"`
		Description  *string          `json:"description"`
		CurrentValue *decimal.Decimal `json:"currentValue"`
		Condition    *string          `json:"condition"`
		Status       *string          `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.CurrentValue != nil && req.CurrentValue.IsNegative() {
		writeError(w, http.StatusBadRequest, "currentValue must not be negative")
		return
	}

	asset, err := h.Repo.Update(r.Context(), chi.URLParam(r, "id"), repository.UpdateAssetInput{
		Name:         req.Name,
		Description:  req.Description,
		CurrentValue: req.CurrentValue,
		Condition:    req.Condition,
		Status:       req.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	_, _ = h.Activity.Create(r.Context(), repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "update_asset",
		EntityType: string(domain.KindAsset),
		EntityID:   &asset.ID,
		Details:    "Updated asset: " + asset.Name,
	})
	writeJSON(w, http.StatusOK, assetResponse(*asset))
}

func (h AssetHandler) approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	updated, err := h.Approvals.Approve(r.Context(), domain.KindAsset, chi.URLParam(r, "id"), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvableResponse(updated))
}

func assetResponse(a domain.Asset) map[string]any {
	var purchaseDate *string
	if a.PurchaseDate != nil {
		d := a.PurchaseDate.Format(dateLayout)
		purchaseDate = &d
	}
	return map[string]any{
		"id":             a.ID,
		"name":           a.Name,
		"description":    a.Description,
		"purchaseDate":   purchaseDate,
		"purchaseValue":  a.PurchaseValue,
		"currentValue":   a.CurrentValue,
		"condition":      a.Condition,
		"status":         a.Status,
		"createdBy":      a.CreatedBy,
		"approvalStatus": string(a.ApprovalStatus),
		"approvedBy":     a.ApprovedBy,
	}
}
