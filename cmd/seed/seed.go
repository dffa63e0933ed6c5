package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var defaultBudgets = []struct {
	category string
	limit    int64
}{
	{"Groceries", 500},
	{"Rent", 1500},
	{"Transport", 200},
	{"Entertainment", 300},
	{"Utilities", 150},
}

var expenseCategories = []string{"Groceries", "Transport", "Entertainment", "Utilities", "Dining Out"}

type seedOptions struct {
	Name     string
	Email    string
	Password string
	Expenses int
	Seed     int64
	Now      time.Time
}

type seeder struct {
	users        user.Service
	transactions *application.TransactionService
	budgets      *application.BudgetService
	log          *logrus.Entry
}

type seedResult struct {
	UserID       string
	Budgets      int
	Transactions int
}

func (s *seeder) ensureUser(ctx context.Context, opts seedOptions) (*user.User, error) {
	existing, err := s.users.GetUserByLoginOrEmail(ctx, opts.Email)
	if err == nil {
		s.log.WithField("user_id", existing.ID).Info("reusing existing user")
		return existing, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}
	return s.users.Register(ctx, opts.Name, opts.Email, "", opts.Password)
}

// run creates the demo account with this month's default budgets, a salary and
// a spread of random expenses. Budgets that already exist are left alone.
func (s *seeder) run(ctx context.Context, opts seedOptions) (*seedResult, error) {
	account, err := s.ensureUser(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("could not prepare user: %w", err)
	}
	result := &seedResult{UserID: account.ID}

	month, year := int(opts.Now.Month()), opts.Now.Year()
	for _, b := range defaultBudgets {
		limit := decimal.NewFromInt(b.limit)
		_, err := s.budgets.CreateBudget(ctx, account.ID, domain.BudgetInput{
			Category:     b.category,
			MonthlyLimit: &limit,
			Month:        month,
			Year:         year,
		})
		if financeErrors.IsConflict(err) {
			s.log.WithField("category", b.category).Debug("budget already present")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not create budget %s: %w", b.category, err)
		}
		result.Budgets++
	}

	salary := decimal.NewFromInt(4000)
	salaryDate := opts.Now.AddDate(0, 0, -15)
	inputs := []domain.TransactionInput{{
		Amount:      &salary,
		Kind:        string(domain.KindIncome),
		Category:    "Salary",
		Description: "Monthly Salary",
		OccurredAt:  &salaryDate,
	}}

	rng := rand.New(rand.NewSource(opts.Seed))
	for i := 0; i < opts.Expenses; i++ {
		// between 5.00 and 104.99
		amount := decimal.New(int64(500+rng.Intn(10000)), -2)
		occurredAt := opts.Now.AddDate(0, 0, -rng.Intn(30))
		category := expenseCategories[rng.Intn(len(expenseCategories))]
		inputs = append(inputs, domain.TransactionInput{
			Amount:      &amount,
			Kind:        string(domain.KindExpense),
			Category:    category,
			Description: fmt.Sprintf("Random %s expense", category),
			OccurredAt:  &occurredAt,
		})
	}

	for _, input := range inputs {
		if _, err := s.transactions.CreateTransaction(ctx, account.ID, input); err != nil {
			return nil, fmt.Errorf("could not create transaction: %w", err)
		}
		result.Transactions++
	}
	return result, nil
}
