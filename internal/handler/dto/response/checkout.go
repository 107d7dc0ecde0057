package response

import (
	"time"

	"github.com/nikolayk812/checkout-session/internal/domain"
	"github.com/shopspring/decimal"
)

type SessionResponse struct {
	ActiveStep     int                     `json:"activeStep"`
	StepName       string                  `json:"stepName"`
	Currency       string                  `json:"currency"`
	Items          []CartLineResponse      `json:"items"`
	ItemCount      int                     `json:"itemCount"`
	SubTotal       decimal.Decimal         `json:"subTotal"`
	Discount       decimal.Decimal         `json:"discount"`
	Shipping       decimal.Decimal         `json:"shipping"`
	Total          decimal.Decimal         `json:"total"`
	Billing        *BillingResponse        `json:"billing"`
	ShippingMethod *ShippingMethodResponse `json:"shippingMethod"`
	LastOrder      *OrderResponse          `json:"lastOrder"`

	// PlacementPending is set while an order placement awaits confirmation.
	PlacementPending bool `json:"placementPending"`
}

type CartLineResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CoverURL  string          `json:"coverUrl"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type BillingResponse struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type ShippingMethodResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
}

type OrderResponse struct {
	OrderNumber string          `json:"orderNumber"`
	PlacedAt    time.Time       `json:"placedAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	ItemCount   int             `json:"itemCount"`
	SubTotal    decimal.Decimal `json:"subTotal"`
	Discount    decimal.Decimal `json:"discount"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
}

func FromSession(s domain.Session) *SessionResponse {
	resp := &SessionResponse{
		ActiveStep: int(s.ActiveStep()),
		StepName:   s.ActiveStep().String(),
		Currency:   s.Currency().String(),
		Items:      make([]CartLineResponse, 0, len(s.Items())),
		ItemCount:  s.ItemCount(),
		SubTotal:   s.SubTotal().Amount,
		Discount:   s.Discount().Amount,
		Shipping:   s.Shipping().Amount,
		Total:      s.Total().Amount,

		PlacementPending: s.PlacementID() != "",
	}

	for _, item := range s.Items() {
		resp.Items = append(resp.Items, CartLineResponse{
			ID:        item.ID,
			Name:      item.Name,
			CoverURL:  item.CoverURL,
			Price:     item.Price.Amount,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().Amount,
		})
	}

	if b := s.Billing(); b != nil {
		resp.Billing = &BillingResponse{
			FirstName:  b.FirstName,
			LastName:   b.LastName,
			Email:      b.Email,
			Phone:      b.Phone,
			Address:    b.Address,
			City:       b.City,
			State:      b.State,
			PostalCode: b.PostalCode,
			Country:    b.Country,
		}
	}

	if m := s.ShippingMethod(); m != nil {
		resp.ShippingMethod = &ShippingMethodResponse{
			ID:                m.ID,
			Name:              m.Name,
			Price:             m.Price.Amount,
			EstimatedDelivery: m.EstimatedDelivery,
		}
	}

	if o := s.LastOrder(); o != nil {
		resp.LastOrder = &OrderResponse{
			OrderNumber: o.OrderNumber,
			PlacedAt:    o.PlacedAt,
			UpdatedAt:   o.UpdatedAt,
			ItemCount:   o.ItemCount,
			SubTotal:    o.SubTotal.Amount,
			Discount:    o.Discount.Amount,
			Shipping:    o.Shipping.Amount,
			Total:       o.Total.Amount,
		}
	}

	return resp
}
