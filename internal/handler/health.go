package handler

import (
	"net/http"

	"alphagrid-backend/internal/ports"
	"github.com/go-chi/chi/v5"
)

type HealthHandler struct {
	DB ports.HealthChecker
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

func (h HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "up"})
}
