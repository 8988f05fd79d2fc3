package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators installs the custom tags on gin's validator and makes
// field errors report JSON names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return registerValidators(v)
}

func registerValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("money", validateMoney); err != nil {
		return fmt.Errorf("register money validator: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

// validateMoney accepts non-negative amounts with at most two decimals.
func validateMoney(fl validator.FieldLevel) bool {
	switch d := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return isMoney(d)
	case decimal.NullDecimal:
		return !d.Valid || isMoney(d.Decimal)
	default:
		return false
	}
}

func isMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}
