package interfaces

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/logger"
	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/stretchr/testify/require"
)

const (
	ownerID1 = "0b6f4b4e-3c4f-4a36-9d4e-6a1d2a0c7b11"
	ownerID2 = "5d1c1a7e-8e0a-4d1b-9f3c-2b7e9c4d6a22"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}

	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}

	respondJSON(w, status, payload)
}

type testServer struct {
	mux          *http.ServeMux
	transactions *infrastructure.MockTransactionRepository
	budgets      *infrastructure.MockBudgetRepository
	budget       *BudgetHandler
}

// newTestServer routes requests the same way the API server does, minus JWT
// validation: the X-Test-User header stands in for the authenticated user.
func newTestServer(scope string) *testServer {
	log := logger.WithComponent(logger.Discard(), "test")
	transactions := &infrastructure.MockTransactionRepository{}
	budgets := &infrastructure.MockBudgetRepository{}

	transactionHandler := NewTransactionHandler(application.NewTransactionService(transactions, log), respondJSON, respondError)
	budgetHandler := NewBudgetHandler(application.NewBudgetService(budgets, transactions, scope, log), respondJSON, respondError)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/protected/transactions", transactionHandler.GetTransactions)
	mux.HandleFunc("GET /api/protected/transactions/summary", transactionHandler.GetSummary)
	mux.HandleFunc("POST /api/protected/transactions", transactionHandler.CreateTransaction)
	mux.Handle("PUT /api/protected/transactions/{transactionID}",
		ValidatePathParamsMiddleware(respondError, http.HandlerFunc(transactionHandler.UpdateTransaction), "transactionID"))
	mux.Handle("DELETE /api/protected/transactions/{transactionID}",
		ValidatePathParamsMiddleware(respondError, http.HandlerFunc(transactionHandler.DeleteTransaction), "transactionID"))

	mux.HandleFunc("GET /api/protected/budgets", budgetHandler.GetBudgets)
	mux.HandleFunc("GET /api/protected/budgets/status", budgetHandler.GetBudgetStatuses)
	mux.HandleFunc("POST /api/protected/budgets", budgetHandler.CreateBudget)
	mux.Handle("PUT /api/protected/budgets/{budgetID}",
		ValidatePathParamsMiddleware(respondError, http.HandlerFunc(budgetHandler.UpdateBudget), "budgetID"))
	mux.Handle("DELETE /api/protected/budgets/{budgetID}",
		ValidatePathParamsMiddleware(respondError, http.HandlerFunc(budgetHandler.DeleteBudget), "budgetID"))

	return &testServer{mux: mux, transactions: transactions, budgets: budgets, budget: budgetHandler}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, owner, method, target, body string) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if owner != "" {
		req = req.WithContext(user.ContextWithUserID(req.Context(), owner))
	}

	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	var response apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response), rr.Body.String())
	return rr.Code, response
}

func decodeData(t *testing.T, response apiResponse, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(response.Data, into))
}

