package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, cur currency.Unit) Money {
	return Money{Amount: amount, Currency: cur}
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// hasCurrency reports whether m is denominated in cur. An unset currency
// is treated as the session currency.
func (m Money) hasCurrency(cur currency.Unit) bool {
	return m.Currency == (currency.Unit{}) || m.Currency == cur
}
