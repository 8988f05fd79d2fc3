// Package ledger holds the balance arithmetic for patient accounts.
//
// A patient's balance moves only through postings: a charge lowers it by the
// visit charges, a payment or an advance raises it by the amount received.
// Both payment kinds currently post the same positive delta.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/physiotrack/clinic-api/internal/model"
)

type Kind string

const (
	KindCharge  Kind = "charge"
	KindPayment Kind = "payment"
	KindAdvance Kind = "advance"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCharge, KindPayment, KindAdvance:
		return true
	}
	return false
}

// KindForPayment picks the posting kind for a recorded payment.
func KindForPayment(t model.PaymentType) Kind {
	if t == model.PaymentTypeAdvance {
		return KindAdvance
	}
	return KindPayment
}

// Delta returns the signed change a posting of amount makes to a balance.
func Delta(kind Kind, amount decimal.Decimal) (decimal.Decimal, error) {
	if !kind.Valid() {
		return decimal.Zero, fmt.Errorf("unknown ledger kind %q", kind)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("ledger amount must be non-negative, got %s", amount)
	}
	if kind == KindCharge {
		return amount.Neg(), nil
	}
	return amount, nil
}

// Apply returns balance after posting amount of the given kind.
func Apply(balance decimal.Decimal, kind Kind, amount decimal.Decimal) (decimal.Decimal, error) {
	delta, err := Delta(kind, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Add(delta), nil
}
