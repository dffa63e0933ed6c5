package infrastructure

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

// MockTransactionRepository keeps transactions in memory. Setting Err makes
// every call fail with it.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []domain.Transaction
	Err          error
}

func (m *MockTransactionRepository) Save(_ context.Context, transaction *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) FindByID(_ context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Transactions {
		if t.ID == transactionID {
			found := t
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockTransactionRepository) FindByOwner(_ context.Context, ownerID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	result := []domain.Transaction{}
	for _, t := range m.Transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if filter.From != nil && t.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !t.OccurredAt.Before(*filter.To) {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		result = append(result, t)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})
	return result, nil
}

func (m *MockTransactionRepository) Update(_ context.Context, transaction *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transaction.ID && t.OwnerID == transaction.OwnerID {
			m.Transactions[i] = *transaction
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MockTransactionRepository) Delete(_ context.Context, transactionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, t := range m.Transactions {
		if t.ID == transactionID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
