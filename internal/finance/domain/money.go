package domain

import "github.com/shopspring/decimal"

func init() {
	// amounts go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// RoundToCents rounds half away from zero to two decimal places, matching NUMERIC(14,2).
func RoundToCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
