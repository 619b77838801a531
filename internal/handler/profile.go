package handler

import (
	"encoding/json"
	"net/http"

	"alphagrid-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	Users repository.UserRepository
}

func (h ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.get)
	r.Put("/me", h.update)
}

func (h ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.Users.GetByID(r.Context(), actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(*user))
}

func (h ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		FullName        *string `json:"fullName"`
		ProfilePhotoURL *string `json:"profilePhotoUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FullName != nil && *req.FullName == "" {
		writeError(w, http.StatusBadRequest, "fullName must not be empty")
		return
	}
	user, err := h.Users.UpdateProfile(r.Context(), actor.ID, repository.UpdateProfileParams{
		FullName:        req.FullName,
		ProfilePhotoURL: req.ProfilePhotoURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(*user))
}
