package interfaces

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTransaction(t *testing.T, s *testServer, owner, body string) domain.Transaction {
	t.Helper()
	status, response := s.do(t, owner, http.MethodPost, "/api/protected/transactions", body)
	require.Equal(t, http.StatusCreated, status, response.Message)
	var transaction domain.Transaction
	decodeData(t, response, &transaction)
	return transaction
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)

	transaction := createTransaction(t, s, ownerID1,
		`{"amount":12.5,"kind":"expense","category":"Groceries","description":"weekly shop","occurredAt":"2024-03-10"}`)

	assert.Equal(t, ownerID1, transaction.OwnerID)
	assert.Equal(t, "12.5", transaction.Amount.String())
	assert.Equal(t, domain.KindExpense, transaction.Kind)
	assert.Equal(t, "2024-03-10", transaction.OccurredAt.Format(dateLayout))
	assert.Len(t, s.transactions.Transactions, 1)
}

func TestCreateTransaction_ValidationErrors(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)

	status, response := s.do(t, ownerID1, http.MethodPost, "/api/protected/transactions", `{"kind":"expense"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "Validation errors occurred", response.Message)
	assert.Contains(t, response.Errors, "Amount is required")
	assert.Contains(t, response.Errors, "Category is required")
	assert.Empty(t, s.transactions.Transactions)
}

func TestCreateTransaction_BadInput(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"amount":`, "Invalid request body"},
		{"bad date", `{"amount":1,"kind":"income","category":"Salary","occurredAt":"10/03/2024"}`,
			"Invalid occurredAt format, expected RFC 3339 or YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := s.do(t, ownerID1, http.MethodPost, "/api/protected/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.message, response.Message)
		})
	}
}

func TestTransactions_RequireAuthenticatedUser(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)

	status, response := s.do(t, "", http.MethodGet, "/api/protected/transactions", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", response.Message)
}

func TestGetTransactions_Filters(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)
	createTransaction(t, s, ownerID1, `{"amount":40,"kind":"expense","category":"Groceries","occurredAt":"2024-03-01"}`)
	createTransaction(t, s, ownerID1, `{"amount":60,"kind":"expense","category":"Groceries","occurredAt":"2024-03-31T23:00:00Z"}`)
	createTransaction(t, s, ownerID1, `{"amount":4000,"kind":"income","category":"Salary","occurredAt":"2024-04-01"}`)
	createTransaction(t, s, ownerID2, `{"amount":1,"kind":"expense","category":"Groceries","occurredAt":"2024-03-05"}`)

	var transactions []domain.Transaction
	status, response := s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions", "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, response, &transactions)
	require.Len(t, transactions, 3)
	assert.Equal(t, "Salary", transactions[0].Category)

	status, response = s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions?startDate=2024-03-01&endDate=2024-03-31", "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, response, &transactions)
	assert.Len(t, transactions, 2)

	status, response = s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions?kind=income", "")
	require.Equal(t, http.StatusOK, status)
	decodeData(t, response, &transactions)
	require.Len(t, transactions, 1)
	assert.Equal(t, domain.KindIncome, transactions[0].Kind)

	status, _ = s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions?kind=transfer", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions?startDate=2024-13-01", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions?startDate=2024-04-02&endDate=2024-04-01", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetSummary(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)
	createTransaction(t, s, ownerID1, `{"amount":4000,"kind":"income","category":"Salary"}`)
	createTransaction(t, s, ownerID1, `{"amount":80,"kind":"expense","category":"Groceries"}`)
	createTransaction(t, s, ownerID1, `{"amount":20,"kind":"expense","category":"Groceries"}`)
	createTransaction(t, s, ownerID1, `{"amount":50,"kind":"expense","category":"Transport"}`)
	createTransaction(t, s, ownerID2, `{"amount":999,"kind":"expense","category":"Transport"}`)

	status, response := s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions/summary", "")
	require.Equal(t, http.StatusOK, status)

	assert.JSONEq(t, `{
		"totalIncome": 4000,
		"totalExpense": 150,
		"balance": 3850,
		"categoryBreakdown": [
			{"category": "Groceries", "totalAmount": 100},
			{"category": "Transport", "totalAmount": 50}
		]
	}`, string(response.Data))
}

func TestGetSummary_NoTransactions(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)

	status, response := s.do(t, ownerID1, http.MethodGet, "/api/protected/transactions/summary", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"totalIncome":0,"totalExpense":0,"balance":0,"categoryBreakdown":[]}`, string(response.Data))
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)
	own := createTransaction(t, s, ownerID1, `{"amount":100,"kind":"expense","category":"Rent"}`)
	foreign := createTransaction(t, s, ownerID2, `{"amount":100,"kind":"expense","category":"Rent"}`)

	status, response := s.do(t, ownerID1, http.MethodPut, "/api/protected/transactions/"+own.ID.String(), `{"category":"Housing","amount":"120.50"}`)
	require.Equal(t, http.StatusOK, status)
	var updated domain.Transaction
	decodeData(t, response, &updated)
	assert.Equal(t, "Housing", updated.Category)
	assert.Equal(t, "120.5", updated.Amount.String())

	status, response = s.do(t, ownerID1, http.MethodPut, "/api/protected/transactions/"+foreign.ID.String(), `{"category":"Housing"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User not authorized", response.Message)

	status, response = s.do(t, ownerID1, http.MethodPut, "/api/protected/transactions/"+own.ID.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No fields to update", response.Message)

	status, _ = s.do(t, ownerID1, http.MethodPut, "/api/protected/transactions/"+own.ID.String(), `{"kind":"gift"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(config.SpendScopeAllTime)
	own := createTransaction(t, s, ownerID1, `{"amount":100,"kind":"expense","category":"Rent"}`)
	foreign := createTransaction(t, s, ownerID2, `{"amount":100,"kind":"expense","category":"Rent"}`)

	status, response := s.do(t, ownerID1, http.MethodDelete, "/api/protected/transactions/"+foreign.ID.String(), "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User not authorized", response.Message)
	assert.Len(t, s.transactions.Transactions, 2)

	status, response = s.do(t, ownerID1, http.MethodDelete, "/api/protected/transactions/"+own.ID.String(), "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Transaction removed", response.Message)
	assert.Len(t, s.transactions.Transactions, 1)

	status, response = s.do(t, ownerID1, http.MethodDelete, "/api/protected/transactions/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Transaction not found", response.Message)

	status, response = s.do(t, ownerID1, http.MethodDelete, "/api/protected/transactions/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Transaction not found", response.Message)
}
