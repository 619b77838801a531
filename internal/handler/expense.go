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

type ExpenseHandler struct {
	Repo      repository.ExpenseRepository
	Approvals service.ApprovalService
	Activity  repository.ActivityLogRepository
}

func (h ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/expenses", h.list)
	r.Post("/expenses", h.create)
	r.Post("/expenses/{id}/approve", h.approve)
}

func (h ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Category        string          `json:"category"`
		Amount          decimal.Decimal `json:"amount"`
		Description     string          `json:"description"`
		TransactionDate string          `json:"transactionDate"`
		VendorName      *string         `json:"vendorName"`
		InvoiceNumber   *string         `json:"invoiceNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
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

	rec, err := h.Repo.Create(r.Context(), repository.CreateExpenseInput{
		Category:        req.Category,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: txDate,
		VendorName:      req.VendorName,
		InvoiceNumber:   req.InvoiceNumber,
		CreatedBy:       actor.ID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, _ = h.Activity.Create(r.Context(), repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     "create_expense_record",
		EntityType: string(domain.KindExpenseRecord),
		EntityID:   &rec.ID,
		Details:    "Created expense " + rec.ReceiptNumber,
	})
	writeJSON(w, http.StatusOK, expenseResponse(*rec))
}

func (h ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
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
		resp = append(resp, expenseResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ExpenseHandler) approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	updated, err := h.Approvals.Approve(r.Context(), domain.KindExpenseRecord, chi.URLParam(r, "id"), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvableResponse(updated))
}

func expenseResponse(rec domain.ExpenseRecord) map[string]any {
	return map[string]any{
		"id":              rec.ID,
		"category":        rec.Category,
		"amount":          rec.Amount,
		"description":     rec.Description,
		"transactionDate": rec.TransactionDate.Format(dateLayout),
		"vendorName":      rec.VendorName,
		"invoiceNumber":   rec.InvoiceNumber,
		"receiptNumber":   rec.ReceiptNumber,
		"createdBy":       rec.CreatedBy,
		"approvalStatus":  string(rec.ApprovalStatus),
		"approvedBy":      rec.ApprovedBy,
	}
}
