package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type CategoryTotal struct {
	Category    string          `json:"category"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type Summary struct {
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	TotalExpense      decimal.Decimal `json:"totalExpense"`
	Balance           decimal.Decimal `json:"balance"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
}

// Summarize totals income and expense and groups expenses by category.
// Categories are compared exactly as stored. The breakdown is sorted by total
// descending; equal totals keep the order in which the category first appeared.
func Summarize(transactions []Transaction) Summary {
	summary := Summary{
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		CategoryBreakdown: []CategoryTotal{},
	}

	index := make(map[string]int)
	for _, t := range transactions {
		switch t.Kind {
		case KindIncome:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		case KindExpense:
			summary.TotalExpense = summary.TotalExpense.Add(t.Amount)
			i, ok := index[t.Category]
			if !ok {
				i = len(summary.CategoryBreakdown)
				index[t.Category] = i
				summary.CategoryBreakdown = append(summary.CategoryBreakdown, CategoryTotal{
					Category:    t.Category,
					TotalAmount: decimal.Zero,
				})
			}
			summary.CategoryBreakdown[i].TotalAmount = summary.CategoryBreakdown[i].TotalAmount.Add(t.Amount)
		}
	}

	sort.SliceStable(summary.CategoryBreakdown, func(i, j int) bool {
		return summary.CategoryBreakdown[i].TotalAmount.GreaterThan(summary.CategoryBreakdown[j].TotalAmount)
	})

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary
}
