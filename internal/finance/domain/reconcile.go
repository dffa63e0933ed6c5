package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type BudgetState string

const (
	BudgetUnder   BudgetState = "under"
	BudgetWarning BudgetState = "warning"
	BudgetOver    BudgetState = "over"
)

var warningThreshold = decimal.NewFromInt(80)

type BudgetStatus struct {
	Budget     Budget          `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	State      BudgetState     `json:"state"`
}

// Reconcile compares every budget against the expense breakdown. Categories
// match case-insensitively and the result keeps the order of budgets.
func Reconcile(budgets []Budget, breakdown []CategoryTotal) []BudgetStatus {
	spentByCategory := make(map[string]decimal.Decimal, len(breakdown))
	for _, ct := range breakdown {
		key := strings.ToLower(ct.Category)
		// first match wins, the breakdown is already sorted by total
		if _, seen := spentByCategory[key]; !seen {
			spentByCategory[key] = ct.TotalAmount
		}
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, ok := spentByCategory[strings.ToLower(b.Category)]
		if !ok {
			spent = decimal.Zero
		}
		statuses = append(statuses, reconcileOne(b, spent))
	}
	return statuses
}

func reconcileOne(b Budget, spent decimal.Decimal) BudgetStatus {
	percentage := spent.Div(b.MonthlyLimit).Mul(hundred)
	percentage = decimal.Min(percentage, hundred).Round(2)

	state := BudgetUnder
	switch {
	case spent.GreaterThanOrEqual(b.MonthlyLimit):
		state = BudgetOver
	case percentage.GreaterThan(warningThreshold):
		state = BudgetWarning
	}

	return BudgetStatus{
		Budget:     b,
		Spent:      spent,
		Remaining:  b.MonthlyLimit.Sub(spent),
		Percentage: percentage,
		State:      state,
	}
}
