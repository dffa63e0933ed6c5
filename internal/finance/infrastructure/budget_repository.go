package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const uniqueViolationCode = "23505"

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, user_id, category, monthly_limit, month, year, created_at, updated_at`

func (r *BudgetRepository) Save(ctx context.Context, budget *domain.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		budget.ID, budget.OwnerID, budget.Category, budget.MonthlyLimit, budget.Month, budget.Year,
		budget.CreatedAt, budget.UpdatedAt,
	)
	if err != nil {
		return mapBudgetWriteError("insert budget", err)
	}
	return nil
}

func (r *BudgetRepository) FindByID(ctx context.Context, budgetID uuid.UUID) (*domain.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, budgetID)
	return scanBudget(row)
}

func (r *BudgetRepository) FindByOwner(ctx context.Context, ownerID string, filter domain.BudgetFilter) ([]domain.Budget, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	if filter.Month != 0 {
		args = append(args, filter.Month)
		conditions = append(conditions, fmt.Sprintf("month = $%d", len(args)))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + budgetColumns + ` FROM budgets
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY year DESC, month DESC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

func (r *BudgetRepository) ExistsForPeriod(ctx context.Context, ownerID, category string, month, year int) (bool, error) {
	query := `SELECT COUNT(1)
              FROM budgets
              WHERE user_id = $1 AND category = $2 AND month = $3 AND year = $4`

	var count int
	if err := r.db.QueryRowContext(ctx, query, ownerID, category, month, year).Scan(&count); err != nil {
		return false, fmt.Errorf("count budgets: %w", err)
	}
	return count > 0, nil
}

func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE budgets
        SET category = $1, monthly_limit = $2, month = $3, year = $4, updated_at = $5
        WHERE id = $6 AND user_id = $7`,
		budget.Category, budget.MonthlyLimit, budget.Month, budget.Year, budget.UpdatedAt, budget.ID, budget.OwnerID,
	)
	if err != nil {
		return mapBudgetWriteError("update budget", err)
	}
	return expectAffected(result)
}

func (r *BudgetRepository) Delete(ctx context.Context, budgetID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, budgetID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return expectAffected(result)
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	var budget domain.Budget
	err := row.Scan(&budget.ID, &budget.OwnerID, &budget.Category, &budget.MonthlyLimit, &budget.Month, &budget.Year,
		&budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	return &budget, nil
}

// mapBudgetWriteError reports a race on the (user, category, month, year) unique index
// the same way as the pre-insert check does.
func mapBudgetWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return financeErrors.ErrBudgetExists
	}
	return fmt.Errorf("%s: %w", op, err)
}
