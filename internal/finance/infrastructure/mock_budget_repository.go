package infrastructure

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

// MockBudgetRepository keeps budgets in memory and enforces the same
// (owner, category, month, year) uniqueness as the database index.
type MockBudgetRepository struct {
	mu      sync.Mutex
	Budgets []domain.Budget
	Err     error
}

func (m *MockBudgetRepository) Save(_ context.Context, budget *domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.taken(budget) {
		return financeErrors.ErrBudgetExists
	}
	m.Budgets = append(m.Budgets, *budget)
	return nil
}

func (m *MockBudgetRepository) FindByID(_ context.Context, budgetID uuid.UUID) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, b := range m.Budgets {
		if b.ID == budgetID {
			found := b
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockBudgetRepository) FindByOwner(_ context.Context, ownerID string, filter domain.BudgetFilter) ([]domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	result := []domain.Budget{}
	for _, b := range m.Budgets {
		if b.OwnerID != ownerID {
			continue
		}
		if filter.Month != 0 && b.Month != filter.Month {
			continue
		}
		if filter.Year != 0 && b.Year != filter.Year {
			continue
		}
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		result = append(result, b)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result, nil
}

func (m *MockBudgetRepository) ExistsForPeriod(_ context.Context, ownerID, category string, month, year int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return m.taken(&domain.Budget{OwnerID: ownerID, Category: category, Month: month, Year: year}), nil
}

func (m *MockBudgetRepository) Update(_ context.Context, budget *domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, b := range m.Budgets {
		if b.ID == budget.ID && b.OwnerID == budget.OwnerID {
			m.Budgets[i] = *budget
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MockBudgetRepository) Delete(_ context.Context, budgetID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, b := range m.Budgets {
		if b.ID == budgetID {
			m.Budgets = append(m.Budgets[:i], m.Budgets[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *MockBudgetRepository) taken(budget *domain.Budget) bool {
	for _, b := range m.Budgets {
		if b.ID != budget.ID && b.OwnerID == budget.OwnerID && b.Category == budget.Category &&
			b.Month == budget.Month && b.Year == budget.Year {
			return true
		}
	}
	return false
}
