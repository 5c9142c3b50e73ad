package handler

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// parsePositiveInt parses a query parameter into an int, rejecting negatives
func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if val < 0 {
		return 0, strconv.ErrRange
	}
	return val, nil
}

// toDecimalPtr converts a float64 to a *decimal.Decimal
func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
