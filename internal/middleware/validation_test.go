package middleware

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moneyRequest struct {
	Amount *decimal.Decimal    `json:"amount" binding:"required,money"`
	Price  decimal.NullDecimal `json:"unitPrice" binding:"money"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, registerValidators(v))
	return v
}

func TestMoneyValidator(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		amount string
		valid  bool
	}{
		{"0", true},
		{"500", true},
		{"12.5", true},
		{"12.50", true},
		{"12.505", false},
		{"-1", false},
		{"-0.01", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			err := v.Struct(moneyRequest{Amount: &amount})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMoneyValidatorNullDecimal(t *testing.T) {
	v := newTestValidator(t)
	amount := decimal.NewFromInt(1)

	assert.NoError(t, v.Struct(moneyRequest{Amount: &amount}))
	assert.NoError(t, v.Struct(moneyRequest{Amount: &amount, Price: decimal.NewNullDecimal(decimal.RequireFromString("3.99"))}))
	assert.Error(t, v.Struct(moneyRequest{Amount: &amount, Price: decimal.NewNullDecimal(decimal.RequireFromString("-3"))}))
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	v := newTestValidator(t)

	err := v.Struct(moneyRequest{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "amount", verrs[0].Field())
	assert.Equal(t, "required", verrs[0].Tag())
}
