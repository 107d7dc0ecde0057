package domain

import "fmt"

// Product is the catalog snapshot copied into a cart line at add time.
type Product struct {
	ID       string
	Name     string
	CoverURL string
	Price    Money
}

type CartLine struct {
	ID       string
	Name     string
	CoverURL string
	Price    Money
	Quantity int
}

func (p Product) validate(s Session) error {
	if p.ID == "" {
		return ErrEmptyProductID
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product[%s]: %w", p.ID, ErrNegativePrice)
	}
	if !p.Price.hasCurrency(s.currency) {
		return fmt.Errorf("product[%s] price in %s: %w", p.ID, p.Price.Currency, ErrCurrencyMismatch)
	}
	return nil
}

func newCartLine(p Product, s Session) CartLine {
	return CartLine{
		ID:       p.ID,
		Name:     p.Name,
		CoverURL: p.CoverURL,
		Price:    NewMoney(p.Price.Amount, s.currency),
		Quantity: 1,
	}
}

// LineTotal is price multiplied by quantity.
func (l CartLine) LineTotal() Money {
	return NewMoney(l.Price.Amount.Mul(decimalFromInt(l.Quantity)), l.Price.Currency)
}
