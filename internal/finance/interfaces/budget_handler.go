package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/shopspring/decimal"
)

type BudgetServiceInterface interface {
	CreateBudget(ctx context.Context, ownerID string, input domain.BudgetInput) (*domain.Budget, error)
	GetBudgets(ctx context.Context, ownerID string, filter domain.BudgetFilter) ([]domain.Budget, error)
	UpdateBudget(ctx context.Context, ownerID string, budgetID uuid.UUID, update domain.BudgetUpdate) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, ownerID string, budgetID uuid.UUID) error
	GetBudgetStatuses(ctx context.Context, ownerID string, month, year int) ([]domain.BudgetStatus, error)
}

type BudgetHandler struct {
	service      BudgetServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
	now          func() time.Time
}

func NewBudgetHandler(service BudgetServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *BudgetHandler {
	return &BudgetHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type createBudgetRequest struct {
	Category     string           `json:"category"`
	MonthlyLimit *decimal.Decimal `json:"monthlyLimit"`
	Month        int              `json:"month"`
	Year         int              `json:"year"`
}

type updateBudgetRequest struct {
	Category     *string          `json:"category"`
	MonthlyLimit *decimal.Decimal `json:"monthlyLimit"`
	Month        *int             `json:"month"`
	Year         *int             `json:"year"`
}

// queryInt returns fallback when the parameter is absent.
func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budget, err := h.service.CreateBudget(r.Context(), userID, domain.BudgetInput{
		Category:     req.Category,
		MonthlyLimit: req.MonthlyLimit,
		Month:        req.Month,
		Year:         req.Year,
	})
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to create budget")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Budget successfully created.",
		"data":    budget,
	})
}

func (h *BudgetHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	month, ok := queryInt(r, "month", 0)
	if !ok || month < 0 || month > 12 {
		h.respondError(w, http.StatusBadRequest, "Month must be between 1 and 12")
		return
	}
	year, ok := queryInt(r, "year", 0)
	if !ok || year < 0 {
		h.respondError(w, http.StatusBadRequest, "Year is required and must be a valid year")
		return
	}

	budgets, err := h.service.GetBudgets(r.Context(), userID, domain.BudgetFilter{
		Month:    month,
		Year:     year,
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve budgets")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budgets retrieved successfully.",
		"data":    budgets,
	})
}

// GetBudgetStatuses defaults to the current month when month or year is omitted.
func (h *BudgetHandler) GetBudgetStatuses(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	now := h.now()
	month, ok := queryInt(r, "month", int(now.Month()))
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Month must be between 1 and 12")
		return
	}
	year, ok := queryInt(r, "year", now.Year())
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Year is required and must be a valid year")
		return
	}

	statuses, err := h.service.GetBudgetStatuses(r.Context(), userID, month, year)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve budget status")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget status retrieved successfully.",
		"data":    statuses,
	})
}

func (h *BudgetHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, ok := pathID(r, "budgetID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Budget not found")
		return
	}

	var req updateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := domain.BudgetUpdate{
		Category:     req.Category,
		MonthlyLimit: req.MonthlyLimit,
		Month:        req.Month,
		Year:         req.Year,
	}
	if update.IsEmpty() {
		h.respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	budget, err := h.service.UpdateBudget(r.Context(), userID, budgetID, update)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to update budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget successfully updated.",
		"data":    budget,
	})
}

func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, ok := pathID(r, "budgetID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Budget not found")
		return
	}

	if err := h.service.DeleteBudget(r.Context(), userID, budgetID); err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to delete budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget removed",
	})
}
