package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, ownerID string, input domain.TransactionInput) (*domain.Transaction, error)
	GetTransactions(ctx context.Context, ownerID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	GetSummary(ctx context.Context, ownerID string, filter domain.TransactionFilter) (domain.Summary, error)
	UpdateTransaction(ctx context.Context, ownerID string, transactionID uuid.UUID, update domain.TransactionUpdate) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID string, transactionID uuid.UUID) error
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  RespondJSONFunc
	respondError RespondErrorFunc
}

func NewTransactionHandler(service TransactionServiceInterface, respondJSON RespondJSONFunc, respondError RespondErrorFunc) *TransactionHandler {
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type createTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Kind        string           `json:"kind"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	OccurredAt  *string          `json:"occurredAt"`
}

type updateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Kind        *string          `json:"kind"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	OccurredAt  *string          `json:"occurredAt"`
}

func parseOccurredAt(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	occurredAt, err := parseTimestamp(*raw)
	if err != nil {
		return nil, financeErrors.NewValidationError("Invalid occurredAt format, expected RFC 3339 or YYYY-MM-DD")
	}
	return &occurredAt, nil
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	occurredAt, err := parseOccurredAt(req.OccurredAt)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.service.CreateTransaction(r.Context(), userID, domain.TransactionInput{
		Amount:      req.Amount,
		Kind:        req.Kind,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to create transaction")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind != "" && !domain.IsValidTransactionKind(kind) {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction kind")
		return
	}

	transactions, err := h.service.GetTransactions(r.Context(), userID, domain.TransactionFilter{
		From:     from,
		To:       to,
		Category: r.URL.Query().Get("category"),
		Kind:     domain.Kind(kind),
	})
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions retrieved successfully.",
		"data":    transactions,
	})
}

func (h *TransactionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.service.GetSummary(r.Context(), userID, domain.TransactionFilter{From: from, To: to})
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to retrieve transaction summary")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Summary retrieved successfully.",
		"data":    summary,
	})
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, ok := pathID(r, "transactionID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	occurredAt, err := parseOccurredAt(req.OccurredAt)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	update := domain.TransactionUpdate{
		Amount:      req.Amount,
		Kind:        req.Kind,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  occurredAt,
	}
	if update.IsEmpty() {
		h.respondError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	transaction, err := h.service.UpdateTransaction(r.Context(), userID, transactionID, update)
	if err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to update transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully updated.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, ok := pathID(r, "transactionID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
		respondServiceError(w, r, h.respondError, err, "Failed to delete transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction removed",
	})
}
