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

type ProjectHandler struct {
	Repo    repository.ProjectRepository
	Service service.ProjectService
}

func (h ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Get("/projects", h.list)
	r.Post("/projects", h.create)
	r.Post("/projects/{id}/workers", h.assignWorker)
	r.Post("/projects/{id}/complete", h.complete)
	r.Post("/projects/{id}/cancel", h.cancel)
}

func (h ProjectHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		TotalValue  decimal.Decimal `json:"totalValue"`
		StartDate   *string         `json:"startDate"`
		EndDate     *string         `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.TotalValue.IsPositive() {
		writeError(w, http.StatusBadRequest, "totalValue must be positive")
		return
	}
	startDate, err := optionalDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return
	}
	endDate, err := optionalDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return
	}

	project, err := h.Service.Create(r.Context(), actor, repository.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		TotalValue:  req.TotalValue,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse(*project))
}

func (h ProjectHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context(), 200)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, project := range items {
		resp = append(resp, projectResponse(project))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ProjectHandler) assignWorker(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		WorkerID        string          `json:"workerId"`
		SharePercentage decimal.Decimal `json:"sharePercentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.WorkerID == "" {
		writeError(w, http.StatusBadRequest, "workerId is required")
		return
	}
	if !req.SharePercentage.IsPositive() || req.SharePercentage.GreaterThan(decimal.NewFromInt(100)) {
		writeError(w, http.StatusBadRequest, "sharePercentage must be between 0 and 100")
		return
	}

	assignment, err := h.Service.AssignWorker(r.Context(), actor, chi.URLParam(r, "id"), req.WorkerID, req.SharePercentage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":              assignment.ID,
		"projectId":       assignment.ProjectID,
		"workerId":        assignment.WorkerID,
		"sharePercentage": assignment.SharePercentage,
	})
}

func (h ProjectHandler) complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	project, payments, err := h.Service.Complete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created := make([]map[string]any, 0, len(payments))
	for _, p := range payments {
		created = append(created, map[string]any{
			"id":       p.ID,
			"workerId": p.WorkerID,
			"amount":   p.Amount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project":  projectResponse(*project),
		"payments": created,
	})
}

func (h ProjectHandler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Confirmation string `json:"confirmation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	project, err := h.Service.Cancel(r.Context(), actor, chi.URLParam(r, "id"), req.Confirmation)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse(*project))
}

func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func projectResponse(p domain.Project) map[string]any {
	workers := make([]map[string]any, 0, len(p.Workers))
	for _, pw := range p.Workers {
		workers = append(workers, map[string]any{
			"id":              pw.ID,
			"workerId":        pw.WorkerID,
			"workerName":      pw.WorkerName,
			"sharePercentage": pw.SharePercentage,
		})
	}
	var startDate, endDate *string
	if p.StartDate != nil {
		d := p.StartDate.Format(dateLayout)
		startDate = &d
	}
	if p.EndDate != nil {
		d := p.EndDate.Format(dateLayout)
		endDate = &d
	}
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"totalValue":  p.TotalValue,
		"startDate":   startDate,
		"endDate":     endDate,
		"status":      string(p.Status),
		"createdBy":   p.CreatedBy,
		"workers":     workers,
	}
}
