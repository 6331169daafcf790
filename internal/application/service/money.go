package service

import (
	"github.com/shopspring/decimal"

	"projectdesk/internal/domain/apperror"
)

// maxDailyHours caps a single timesheet entry
var maxDailyHours = decimal.NewFromInt(24)

// parseBudget parses a non-negative money amount from its request string.
// An empty string means zero.
func parseBudget(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw, "budget")
}

// parseAmount parses a money field, rejecting malformed and negative values
func parseAmount(raw, field string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.BadRequest("invalid %s amount %q", field, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, apperror.BadRequest("%s cannot be negative", field)
	}
	return amount, nil
}
