package services

import (
	"fmt"

	"github.com/gastrodia/homeledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// amountRule selects the validity policy applied to a normalized value.
type amountRule int

const (
	// rulePositive requires a value strictly greater than zero.
	rulePositive amountRule = iota
	// ruleNonNegative requires a value greater than or equal to zero.
	ruleNonNegative
)

// normalizeAmount validates a required money or quantity value. JSON parsing
// already accepts both numeric strings and numbers via decimal.Decimal; this
// enforces presence and the rule.
func normalizeAmount(raw *decimal.Decimal, field string, rule amountRule) (decimal.Decimal, error) {
	if raw == nil {
		return decimal.Zero, fmt.Errorf("%w: %s is required", apperrors.ErrValidation, field)
	}
	return checkAmountRule(*raw, field, rule)
}

// normalizeOptionalAmount validates a value that may legitimately be absent.
// A nil input passes through as nil.
func normalizeOptionalAmount(raw *decimal.Decimal, field string, rule amountRule) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := checkAmountRule(*raw, field, rule)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func checkAmountRule(v decimal.Decimal, field string, rule amountRule) (decimal.Decimal, error) {
	switch rule {
	case rulePositive:
		if v.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("%w: %s must be a positive number", apperrors.ErrValidation, field)
		}
	case ruleNonNegative:
		if v.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: %s must not be negative", apperrors.ErrValidation, field)
		}
	}
	return v, nil
}
