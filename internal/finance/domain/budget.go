package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	minBudgetYear = 1900
	maxBudgetYear = 9999
)

type BudgetRepository interface {
	Save(ctx context.Context, budget *Budget) error
	FindByID(ctx context.Context, budgetID uuid.UUID) (*Budget, error)
	FindByOwner(ctx context.Context, ownerID string, filter BudgetFilter) ([]Budget, error)
	ExistsForPeriod(ctx context.Context, ownerID, category string, month, year int) (bool, error)
	Update(ctx context.Context, budget *Budget) error
	Delete(ctx context.Context, budgetID uuid.UUID) error
}

type Budget struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      string          `json:"ownerId"`
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthlyLimit"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// BudgetFilter narrows a budget listing; zero values are ignored.
type BudgetFilter struct {
	Month    int
	Year     int
	Category string
}

type BudgetInput struct {
	Category     string
	MonthlyLimit *decimal.Decimal
	Month        int
	Year         int
}

type BudgetUpdate struct {
	Category     *string
	MonthlyLimit *decimal.Decimal
	Month        *int
	Year         *int
}

func (in BudgetInput) Validate() error {
	verr := &errors.ValidationErrors{}
	validateCategory(verr, in.Category)
	if in.MonthlyLimit == nil {
		verr.Add(errors.NewValidationError("Monthly limit is required"))
	} else if !RoundToCents(*in.MonthlyLimit).IsPositive() {
		verr.Add(errors.NewValidationError("Monthly limit must be greater than zero"))
	}
	if in.Month < 1 || in.Month > 12 {
		verr.Add(errors.NewValidationError("Month must be between 1 and 12"))
	}
	if in.Year < minBudgetYear || in.Year > maxBudgetYear {
		verr.Add(errors.NewValidationError("Year is required and must be a valid year"))
	}
	return verr.ErrOrNil()
}

func (u BudgetUpdate) IsEmpty() bool {
	return u.Category == nil && u.MonthlyLimit == nil && u.Month == nil && u.Year == nil
}

// ChangesPeriod reports whether applying u to b moves it to another (category, month, year) slot.
func (u BudgetUpdate) ChangesPeriod(b *Budget) bool {
	return (u.Category != nil && strings.TrimSpace(*u.Category) != b.Category) ||
		(u.Month != nil && *u.Month != b.Month) ||
		(u.Year != nil && *u.Year != b.Year)
}

func (u BudgetUpdate) Apply(b *Budget) error {
	if u.Category != nil {
		b.Category = strings.TrimSpace(*u.Category)
	}
	if u.MonthlyLimit != nil {
		b.MonthlyLimit = *u.MonthlyLimit
	}
	if u.Month != nil {
		b.Month = *u.Month
	}
	if u.Year != nil {
		b.Year = *u.Year
	}
	limit := b.MonthlyLimit
	return BudgetInput{
		Category:     b.Category,
		MonthlyLimit: &limit,
		Month:        b.Month,
		Year:         b.Year,
	}.Validate()
}

// Period returns the half-open time range [start of month, start of next month) in UTC.
func (b *Budget) Period() (time.Time, time.Time) {
	return MonthRange(b.Month, b.Year)
}

func MonthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
