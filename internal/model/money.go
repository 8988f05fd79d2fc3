package model

import (
	"github.com/shopspring/decimal"
)

// Money is an amount that always renders with two decimal places in JSON
// ("800.00", not "800"). It scans from and writes to NUMERIC columns like
// the decimal it wraps.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

func (m Money) String() string {
	return m.StringFixed(2)
}
