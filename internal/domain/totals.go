package domain

import "github.com/shopspring/decimal"

type Totals struct {
	SubTotal decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals sums price*quantity over items and applies discount and
// shipping. Total is not clamped at zero.
func CalculateTotals(items []CartLine, discount, shipping decimal.Decimal) Totals {
	subTotal := decimal.Zero
	for _, item := range items {
		subTotal = subTotal.Add(item.Price.Amount.Mul(decimalFromInt(item.Quantity)))
	}

	return Totals{
		SubTotal: subTotal,
		Total:    subTotal.Sub(discount).Add(shipping),
	}
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
