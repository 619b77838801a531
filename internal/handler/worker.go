package handler

import (
	"encoding/json"
	"net/http"

	"alphagrid-backend/internal/domain"
	"alphagrid-backend/internal/repository"
	"alphagrid-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type WorkerHandler struct {
	Users         repository.UserRepository
	Payments      repository.WorkerPaymentRepository
	PendingRepo   repository.WorkerApprovalRepository
	Identity      service.IdentityService
	ApprovalsSvc  service.ApprovalService
}

func (h WorkerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.listUsers)
	r.Post("/workers", h.create)
	r.Put("/workers/{id}", h.update)
	r.Delete("/workers/{id}", h.delete)
	r.Get("/workers/approvals", h.listPending)
	r.Post("/workers/approvals/{id}/approve", h.approveManagement)
	r.Post("/worker-payments/{id}/approve", h.approvePayment)
}

func (h WorkerHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h WorkerHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Email    *string `json:"email"`
		FullName string  `json:"fullName"`
		Username string  `json:"username"`
		Password string  `json:"password"`
		Role     string  `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	pending, err := h.Identity.CreateWorker(r.Context(), actor, service.CreateWorkerInput{
		Email:    req.Email,
		FullName: req.FullName,
		Username: req.Username,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workerApprovalResponse(*pending))
}

func (h WorkerHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		FullName *string `json:"fullName"`
		Email    *string `json:"email"`
		Username *string `json:"username"`
		Role     *string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var role *domain.UserRole
	if req.Role != nil {
		v := domain.UserRole(*req.Role)
		role = &v
	}

	user, err := h.Identity.UpdateWorker(r.Context(), actor, chi.URLParam(r, "id"), service.UpdateWorkerInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Role:     role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(*user))
}

func (h WorkerHandler) delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.Identity.DeleteWorker(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h WorkerHandler) listPending(w http.ResponseWriter, r *http.Request) {
	var action *domain.WorkerAction
	switch raw := r.URL.Query().Get("action"); raw {
	case "":
	case "create", "update", "delete":
		a := domain.WorkerAction(raw)
		action = &a
	default:
		writeError(w, http.StatusBadRequest, "invalid action")
		return
	}
	items, err := h.PendingRepo.ListPending(r.Context(), action)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, wa := range items {
		resp = append(resp, workerApprovalResponse(wa))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h WorkerHandler) approveManagement(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	updated, err := h.ApprovalsSvc.Approve(r.Context(), domain.KindWorkerApproval, chi.URLParam(r, "id"), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvableResponse(updated))
}

// ListPayments is registered outside RegisterRoutes so temporary workers can
// read their own payment history without partner-level access.
func (h WorkerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workerID := chi.URLParam(r, "id")
	if workerID != actor.ID && actor.Role != domain.RoleCoFounder {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	payments, err := h.Payments.ListByWorker(r.Context(), workerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, workerPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h WorkerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	workerID := chi.URLParam(r, "id")
	if workerID != actor.ID && actor.Role != domain.RoleCoFounder {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	balance, err := h.Payments.Balance(r.Context(), workerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workerId": workerID,
		"balance":  balance,
	})
}

func (h WorkerHandler) approvePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	updated, err := h.ApprovalsSvc.Approve(r.Context(), domain.KindWorkerPayment, chi.URLParam(r, "id"), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvableResponse(updated))
}

func userResponse(u domain.User) map[string]any {
	return map[string]any{
		"id":              u.ID,
		"email":           u.Email,
		"username":        u.Username,
		"fullName":        u.FullName,
		"role":            string(u.Role),
		"isActive":        u.IsActive,
		"profilePhotoUrl": u.ProfilePhotoURL,
	}
}

func workerApprovalResponse(wa domain.WorkerApproval) map[string]any {
	return map[string]any{
		"id":             wa.ID,
		"action":         string(wa.Action),
		"userId":         wa.UserID,
		"userData":       wa.UserData,
		"createdBy":      wa.CreatedBy,
		"createdByName":  wa.CreatedByName,
		"approvalStatus": string(wa.ApprovalStatus),
		"approvedBy":     wa.ApprovedBy,
		"createdAt":      wa.CreatedAt,
	}
}

func workerPaymentResponse(p domain.WorkerPayment) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"workerId":       p.WorkerID,
		"projectId":      p.ProjectID,
		"projectName":    p.ProjectName,
		"amount":         p.Amount,
		"paymentDate":    p.PaymentDate.Format(dateLayout),
		"description":    p.Description,
		"approvalStatus": string(p.ApprovalStatus),
		"approvedBy":     p.ApprovedBy,
	}
}
