package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gastrodia/homeledger/internal/apperrors"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     *decimal.Decimal
		rule    amountRule
		wantErr bool
	}{
		{name: "nil is required", raw: nil, rule: rulePositive, wantErr: true},
		{name: "positive passes positive rule", raw: dec("10.5"), rule: rulePositive},
		{name: "zero fails positive rule", raw: dec("0"), rule: rulePositive, wantErr: true},
		{name: "negative fails positive rule", raw: dec("-3"), rule: rulePositive, wantErr: true},
		{name: "zero passes non-negative rule", raw: dec("0"), rule: ruleNonNegative},
		{name: "negative fails non-negative rule", raw: dec("-0.01"), rule: ruleNonNegative, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeAmount(tt.raw, "field", tt.rule)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(*tt.raw))
		})
	}
}

func TestNormalizeAmount_ErrorNamesField(t *testing.T) {
	_, err := normalizeAmount(nil, "repaidQuantity", rulePositive)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repaidQuantity")
}

func TestNormalizeOptionalAmount(t *testing.T) {
	got, err := normalizeOptionalAmount(nil, "estimatedValue", ruleNonNegative)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = normalizeOptionalAmount(dec("0"), "estimatedValue", ruleNonNegative)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsZero())

	_, err = normalizeOptionalAmount(dec("-1"), "estimatedValue", ruleNonNegative)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
