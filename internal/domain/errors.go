package domain

import "errors"

var (
	ErrEmptyProductID     = errors.New("product id is empty")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrNegativeDiscount   = errors.New("discount cannot be negative")
	ErrNegativeShipping   = errors.New("shipping price cannot be negative")
	ErrCurrencyMismatch   = errors.New("currency does not match session currency")
	ErrStepOutOfRange     = errors.New("step is out of range")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrDuplicateLine      = errors.New("duplicate cart line")
	ErrCheckoutIncomplete = errors.New("checkout is incomplete")
	ErrEmptyPlacementID   = errors.New("placement id is empty")
)
