package domain

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Step int

const (
	StepCart Step = iota
	StepBilling
	StepPayment
	StepSuccess
)

func (s Step) Valid() bool {
	return s >= StepCart && s <= StepSuccess
}

func (s Step) String() string {
	switch s {
	case StepCart:
		return "cart"
	case StepBilling:
		return "billing"
	case StepPayment:
		return "payment"
	case StepSuccess:
		return "success"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Session is the checkout state of one visitor. It is a value: every
// transition returns a new Session and leaves the receiver untouched.
// Totals are recomputed on each transition and never set directly.
type Session struct {
	currency       currency.Unit
	activeStep     Step
	items          []CartLine
	discount       decimal.Decimal
	shipping       decimal.Decimal
	totals         Totals
	billing        *Billing
	shippingMethod *ShippingMethod
	lastOrder      *OrderSnapshot
	placementID    string
}

// NewSession returns the empty default session.
func NewSession(cur currency.Unit) Session {
	return Session{currency: cur}
}

// SessionParams carries persisted session fields into RestoreSession.
type SessionParams struct {
	Currency       currency.Unit
	ActiveStep     Step
	Items          []CartLine
	Discount       decimal.Decimal
	Shipping       decimal.Decimal
	Billing        *Billing
	ShippingMethod *ShippingMethod
	LastOrder      *OrderSnapshot
	PlacementID    string
}

// RestoreSession rebuilds a session from persisted fields, rejecting any
// data that breaks the session invariants.
func RestoreSession(p SessionParams) (Session, error) {
	if !p.ActiveStep.Valid() {
		return Session{}, fmt.Errorf("active step %d: %w", p.ActiveStep, ErrStepOutOfRange)
	}
	if p.Discount.IsNegative() {
		return Session{}, ErrNegativeDiscount
	}
	if p.Shipping.IsNegative() {
		return Session{}, ErrNegativeShipping
	}

	s := NewSession(p.Currency)

	seen := make(map[string]struct{}, len(p.Items))
	for _, item := range p.Items {
		product := Product{ID: item.ID, Price: item.Price}
		if err := product.validate(s); err != nil {
			return Session{}, err
		}
		if item.Quantity < 1 {
			return Session{}, fmt.Errorf("line[%s] quantity %d: %w", item.ID, item.Quantity, ErrInvalidQuantity)
		}
		if _, ok := seen[item.ID]; ok {
			return Session{}, fmt.Errorf("line[%s]: %w", item.ID, ErrDuplicateLine)
		}
		seen[item.ID] = struct{}{}

		item.Price.Currency = p.Currency
		s.items = append(s.items, item)
	}

	s.activeStep = p.ActiveStep
	s.discount = p.Discount
	s.shipping = p.Shipping
	s.billing = copyPtr(p.Billing)
	s.shippingMethod = copyPtr(p.ShippingMethod)
	s.lastOrder = copyPtr(p.LastOrder)
	s.placementID = p.PlacementID

	return s.recalculate(), nil
}

// AddItem appends a line for product, or increments the quantity of the
// line that already holds product.ID.
func (s Session) AddItem(product Product) (Session, error) {
	if err := product.validate(s); err != nil {
		return s, err
	}

	next := s.clone()
	if i := next.indexOf(product.ID); i >= 0 {
		next.items[i].Quantity++
	} else {
		next.items = append(next.items, newCartLine(product, s))
	}

	return next.recalculate(), nil
}

// RemoveItem deletes the line with id. Unknown ids are a no-op.
func (s Session) RemoveItem(id string) Session {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}

	next := s.clone()
	next.items = slices.Delete(next.items, i, i+1)

	return next.recalculate()
}

func (s Session) IncreaseQuantity(id string) Session {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}

	next := s.clone()
	next.items[i].Quantity++

	return next.recalculate()
}

// DecreaseQuantity lowers the quantity of the line with id by one. A line
// that would drop below 1 is removed.
func (s Session) DecreaseQuantity(id string) Session {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}

	if s.items[i].Quantity <= 1 {
		return s.RemoveItem(id)
	}

	next := s.clone()
	next.items[i].Quantity--

	return next.recalculate()
}

// BuyNow replaces the cart with a single line for product and rewinds to
// the cart step.
func (s Session) BuyNow(product Product) (Session, error) {
	if err := product.validate(s); err != nil {
		return s, err
	}

	next := s.clone()
	next.items = []CartLine{newCartLine(product, s)}
	next.activeStep = StepCart

	return next.recalculate(), nil
}

func (s Session) ApplyShipping(method ShippingMethod) (Session, error) {
	if method.Price.IsNegative() {
		return s, ErrNegativeShipping
	}
	if !method.Price.hasCurrency(s.currency) {
		return s, fmt.Errorf("shipping method[%s]: %w", method.ID, ErrCurrencyMismatch)
	}

	method.Price.Currency = s.currency

	next := s.clone()
	next.shippingMethod = &method
	next.shipping = method.Price.Amount

	return next.recalculate(), nil
}

// ApplyDiscount sets the discount amount. A discount above the subtotal is
// accepted, so the total can become negative.
func (s Session) ApplyDiscount(amount Money) (Session, error) {
	if amount.IsNegative() {
		return s, ErrNegativeDiscount
	}
	if !amount.hasCurrency(s.currency) {
		return s, fmt.Errorf("discount: %w", ErrCurrencyMismatch)
	}

	next := s.clone()
	next.discount = amount.Amount

	return next.recalculate(), nil
}

func (s Session) SetBilling(billing Billing) Session {
	next := s.clone()
	next.billing = &billing

	return next
}

func (s Session) GoToStep(step Step) (Session, error) {
	if !step.Valid() {
		return s, fmt.Errorf("step %d: %w", step, ErrStepOutOfRange)
	}

	next := s.clone()
	next.activeStep = step

	return next, nil
}

func (s Session) NextStep() (Session, error) {
	return s.GoToStep(s.activeStep + 1)
}

func (s Session) BackStep() (Session, error) {
	return s.GoToStep(s.activeStep - 1)
}

// RecordOrderSuccess stores the order confirmation and ends any pending
// placement. Items are kept until Reset.
func (s Session) RecordOrderSuccess(order OrderSnapshot) Session {
	next := s.clone()
	next.lastOrder = &order
	next.placementID = ""

	return next
}

// BeginPlacement marks an order placement as pending under id. A pending
// placement keeps its id, so a retried placement reuses it.
func (s Session) BeginPlacement(id string) (Session, error) {
	if s.placementID != "" {
		return s, nil
	}
	if id == "" {
		return s, ErrEmptyPlacementID
	}
	if _, err := s.OrderRequest(); err != nil {
		return s, err
	}

	next := s.clone()
	next.placementID = id

	return next, nil
}

func (s Session) Reset() Session {
	return NewSession(s.currency)
}

// OrderRequest assembles the order placement payload. Items, billing and a
// shipping method are required.
func (s Session) OrderRequest() (OrderRequest, error) {
	if s.IsEmpty() {
		return OrderRequest{}, fmt.Errorf("cart is empty: %w", ErrCheckoutIncomplete)
	}
	if s.billing == nil {
		return OrderRequest{}, fmt.Errorf("billing is missing: %w", ErrCheckoutIncomplete)
	}
	if s.shippingMethod == nil {
		return OrderRequest{}, fmt.Errorf("shipping method is missing: %w", ErrCheckoutIncomplete)
	}

	return OrderRequest{
		Items:          s.Items(),
		Billing:        *s.billing,
		ShippingMethod: *s.shippingMethod,
		SubTotal:       s.SubTotal(),
		Discount:       s.Discount(),
		Shipping:       s.Shipping(),
		Total:          s.Total(),
		PlacementID:    s.placementID,
	}, nil
}

func (s Session) Currency() currency.Unit { return s.currency }
func (s Session) ActiveStep() Step        { return s.activeStep }
func (s Session) SubTotal() Money         { return s.money(s.totals.SubTotal) }
func (s Session) Total() Money            { return s.money(s.totals.Total) }
func (s Session) Discount() Money         { return s.money(s.discount) }
func (s Session) Shipping() Money         { return s.money(s.shipping) }
func (s Session) Billing() *Billing       { return copyPtr(s.billing) }
func (s Session) LastOrder() *OrderSnapshot {
	return copyPtr(s.lastOrder)
}
func (s Session) ShippingMethod() *ShippingMethod {
	return copyPtr(s.shippingMethod)
}

// PlacementID is the id of the pending order placement, empty when none.
func (s Session) PlacementID() string { return s.placementID }

func (s Session) Items() []CartLine {
	return slices.Clone(s.items)
}

// ItemCount is the sum of quantities over all lines.
func (s Session) ItemCount() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s Session) IsEmpty() bool {
	return len(s.items) == 0
}

func (s Session) money(amount decimal.Decimal) Money {
	return NewMoney(amount, s.currency)
}

func (s Session) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(l CartLine) bool {
		return l.ID == id
	})
}

func (s Session) clone() Session {
	next := s
	next.items = slices.Clone(s.items)
	return next
}

func (s Session) recalculate() Session {
	s.totals = CalculateTotals(s.items, s.discount, s.shipping)
	return s
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
