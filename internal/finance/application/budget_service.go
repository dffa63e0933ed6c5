package application

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type BudgetService struct {
	repo             domain.BudgetRepository
	transactionRepo  domain.TransactionRepository
	budgetSpendScope string
	log              *logrus.Entry
	now              func() time.Time
}

// NewBudgetService wires the budget store with the transaction store used for
// reconciliation. spendScope is one of config.SpendScopeAllTime or
// config.SpendScopeBudgetMonth.
func NewBudgetService(repo domain.BudgetRepository, transactionRepo domain.TransactionRepository, spendScope string, log *logrus.Entry) *BudgetService {
	return &BudgetService{
		repo:             repo,
		transactionRepo:  transactionRepo,
		budgetSpendScope: spendScope,
		log:              log,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *BudgetService) CreateBudget(ctx context.Context, ownerID string, input domain.BudgetInput) (*domain.Budget, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(input.Category)

	exists, err := s.repo.ExistsForPeriod(ctx, ownerID, category, input.Month, input.Year)
	if err != nil {
		s.log.WithError(err).WithField("user_id", ownerID).Error("failed to check budget uniqueness")
		return nil, financeErrors.NewStoreError("check budget", err)
	}
	if exists {
		return nil, financeErrors.ErrBudgetExists
	}

	now := s.now()
	budget := &domain.Budget{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Category:     category,
		MonthlyLimit: domain.RoundToCents(*input.MonthlyLimit),
		Month:        input.Month,
		Year:         input.Year,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Save(ctx, budget); err != nil {
		if financeErrors.IsConflict(err) {
			return nil, err
		}
		s.log.WithError(err).WithField("user_id", ownerID).Error("failed to save budget")
		return nil, financeErrors.NewStoreError("save budget", err)
	}
	return budget, nil
}

func (s *BudgetService) GetBudgets(ctx context.Context, ownerID string, filter domain.BudgetFilter) ([]domain.Budget, error) {
	budgets, err := s.repo.FindByOwner(ctx, ownerID, filter)
	if err != nil {
		s.log.WithError(err).WithField("user_id", ownerID).Error("failed to list budgets")
		return nil, financeErrors.NewStoreError("list budgets", err)
	}
	return budgets, nil
}

func (s *BudgetService) UpdateBudget(ctx context.Context, ownerID string, budgetID uuid.UUID, update domain.BudgetUpdate) (*domain.Budget, error) {
	budget, err := s.loadOwned(ctx, ownerID, budgetID)
	if err != nil {
		return nil, err
	}

	changesPeriod := update.ChangesPeriod(budget)
	if err := update.Apply(budget); err != nil {
		return nil, err
	}

	if changesPeriod {
		exists, err := s.repo.ExistsForPeriod(ctx, ownerID, budget.Category, budget.Month, budget.Year)
		if err != nil {
			s.log.WithError(err).WithField("budget_id", budgetID).Error("failed to check budget uniqueness")
			return nil, financeErrors.NewStoreError("check budget", err)
		}
		if exists {
			return nil, financeErrors.ErrBudgetExists
		}
	}

	budget.MonthlyLimit = domain.RoundToCents(budget.MonthlyLimit)
	budget.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, budget); err != nil {
		switch {
		case financeErrors.IsConflict(err):
			return nil, err
		case errors.Is(err, sql.ErrNoRows):
			return nil, financeErrors.NewNotFoundError(financeErrors.ResourceBudget)
		}
		s.log.WithError(err).WithField("budget_id", budgetID).Error("failed to update budget")
		return nil, financeErrors.NewStoreError("update budget", err)
	}
	return budget, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, ownerID string, budgetID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, budgetID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, budgetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return financeErrors.NewNotFoundError(financeErrors.ResourceBudget)
		}
		s.log.WithError(err).WithField("budget_id", budgetID).Error("failed to delete budget")
		return financeErrors.NewStoreError("delete budget", err)
	}
	return nil
}

// GetBudgetStatuses reconciles the owner's budgets for month/year against expense
// totals. Budgets and transactions load concurrently.
func (s *BudgetService) GetBudgetStatuses(ctx context.Context, ownerID string, month, year int) ([]domain.BudgetStatus, error) {
	if month < 1 || month > 12 {
		return nil, financeErrors.NewValidationError("Month must be between 1 and 12")
	}
	if year < 1 {
		return nil, financeErrors.NewValidationError("Year is required and must be a valid year")
	}

	filter := domain.TransactionFilter{Kind: domain.KindExpense}
	if s.budgetSpendScope == config.SpendScopeBudgetMonth {
		from, to := domain.MonthRange(month, year)
		filter.From, filter.To = &from, &to
	}

	var budgets []domain.Budget
	var expenses []domain.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.repo.FindByOwner(gctx, ownerID, domain.BudgetFilter{Month: month, Year: year})
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.transactionRepo.FindByOwner(gctx, ownerID, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.WithError(err).WithField("user_id", ownerID).Error("failed to load budget status inputs")
		return nil, financeErrors.NewStoreError("load budget status", err)
	}

	summary := domain.Summarize(expenses)
	return domain.Reconcile(budgets, summary.CategoryBreakdown), nil
}

func (s *BudgetService) loadOwned(ctx context.Context, ownerID string, budgetID uuid.UUID) (*domain.Budget, error) {
	budget, err := s.repo.FindByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.NewNotFoundError(financeErrors.ResourceBudget)
		}
		s.log.WithError(err).WithField("budget_id", budgetID).Error("failed to load budget")
		return nil, financeErrors.NewStoreError("find budget", err)
	}
	if budget.OwnerID != ownerID {
		s.log.WithFields(logrus.Fields{"budget_id": budgetID, "user_id": ownerID}).Warn("access to foreign budget denied")
		return nil, financeErrors.NewAuthorizationError(financeErrors.ResourceBudget)
	}
	return budget, nil
}
