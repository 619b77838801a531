package handler

import (
	"encoding/json"
	"net/http"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type SalaryHandler struct {
	Service service.SalaryService
}

func (h SalaryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/salaries/calculate", h.calculate)
	r.Post("/salaries/{id}/pay", h.markPaid)
}

func (h SalaryHandler) calculate(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Year < 2000 || req.Year > 2100 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	records, err := h.Service.Calculate(r.Context(), actor, req.Year, req.Month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		resp = append(resp, salaryResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h SalaryHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rec, err := h.Service.MarkPaid(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, salaryResponse(*rec))
}

// History is registered outside RegisterRoutes; the service scopes
// non-founders to their own records.
func (h SalaryHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var userID *string
	if raw := r.URL.Query().Get("userId"); raw != "" {
		userID = &raw
	}
	records, err := h.Service.History(r.Context(), actor, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		resp = append(resp, salaryResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func salaryResponse(rec domain.SalaryRecord) map[string]any {
	var paidDate *string
	if rec.PaidDate != nil {
		d := rec.PaidDate.Format(dateLayout)
		paidDate = &d
	}
	return map[string]any{
		"id":             rec.ID,
		"userId":         rec.UserID,
		"userName":       rec.UserName,
		"month":          rec.Month.Format(dateLayout),
		"amount":         rec.Amount,
		"profitSharePct": rec.ProfitSharePct,
		"totalProfit":    rec.TotalProfit,
		"status":         string(rec.Status),
		"paidDate":       paidDate,
	}
}
