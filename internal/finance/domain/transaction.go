package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	maxDescriptionLength = 200
	maxCategoryLength    = 100
)

type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func IsValidTransactionKind(kind string) bool {
	return kind == string(KindIncome) || kind == string(KindExpense)
}

type TransactionRepository interface {
	Save(ctx context.Context, transaction *Transaction) error
	FindByID(ctx context.Context, transactionID uuid.UUID) (*Transaction, error)
	FindByOwner(ctx context.Context, ownerID string, filter TransactionFilter) ([]Transaction, error)
	Update(ctx context.Context, transaction *Transaction) error
	Delete(ctx context.Context, transactionID uuid.UUID) error
}

type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     string          `json:"ownerId"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionFilter narrows a read-many query. Zero values mean "no filter";
// the date range is half-open [From, To).
type TransactionFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
	Kind     Kind
}

// TransactionInput is the validated shape of a create request.
type TransactionInput struct {
	Amount      *decimal.Decimal
	Kind        string
	Category    string
	Description string
	OccurredAt  *time.Time
}

// TransactionUpdate carries only the fields the caller wants to change.
type TransactionUpdate struct {
	Amount      *decimal.Decimal
	Kind        *string
	Category    *string
	Description *string
	OccurredAt  *time.Time
}

func (in TransactionInput) Validate() error {
	verr := &errors.ValidationErrors{}
	if in.Amount == nil {
		verr.Add(errors.NewValidationError("Amount is required"))
	} else if !RoundToCents(*in.Amount).IsPositive() {
		verr.Add(errors.NewValidationError("Amount must be greater than zero"))
	}
	if in.Kind == "" {
		verr.Add(errors.NewValidationError("Kind is required"))
	} else if !IsValidTransactionKind(in.Kind) {
		verr.Add(errors.NewValidationError("Kind must be 'income' or 'expense'"))
	}
	validateCategory(verr, in.Category)
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		verr.Add(errors.NewValidationError("Description must be of length less than 200"))
	}
	return verr.ErrOrNil()
}

func (u TransactionUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Kind == nil && u.Category == nil && u.Description == nil && u.OccurredAt == nil
}

// Apply merges the update into t and validates the result.
func (u TransactionUpdate) Apply(t *Transaction) error {
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Kind != nil {
		t.Kind = Kind(*u.Kind)
	}
	if u.Category != nil {
		t.Category = strings.TrimSpace(*u.Category)
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.OccurredAt != nil {
		t.OccurredAt = *u.OccurredAt
	}
	return t.Validate()
}

func (t *Transaction) Validate() error {
	amount := t.Amount
	return TransactionInput{
		Amount:      &amount,
		Kind:        string(t.Kind),
		Category:    t.Category,
		Description: t.Description,
	}.Validate()
}

func validateCategory(verr *errors.ValidationErrors, category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		verr.Add(errors.NewValidationError("Category is required"))
	} else if utf8.RuneCountInString(category) > maxCategoryLength {
		verr.Add(errors.NewValidationError("Category must be at most 100 characters"))
	}
}
