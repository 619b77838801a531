package handler

import (
	"net/http"
	"strconv"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
)

type ActivityLogHandler struct {
	Repo repository.ActivityLogRepository
}

func (h ActivityLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	items, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, entry := range items {
		resp = append(resp, activityLogResponse(entry))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Clear wipes the audit trail and records who did it.
func (h ActivityLogHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.Repo.Clear(r.Context(), actor.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func activityLogResponse(entry domain.ActivityLog) map[string]any {
	return map[string]any{
		"id":         entry.ID,
		"userId":     entry.UserID,
		"action":     entry.Action,
		"entityType": entry.EntityType,
		"entityId":   entry.EntityID,
		"details":    entry.Details,
		"createdAt":  entry.CreatedAt,
	}
}
