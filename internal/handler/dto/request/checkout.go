package request

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/nikolayk812/checkout-session/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Prices are read in the session currency.

type ProductRequest struct {
	ID       string          `json:"id" binding:"required"`
	Name     string          `json:"name" binding:"max=200"`
	CoverURL string          `json:"coverUrl" binding:"omitempty,url"`
	Price    decimal.Decimal `json:"price"`
}

type ShippingMethodRequest struct {
	ID                string          `json:"id" binding:"required"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
}

type DiscountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type BillingRequest struct {
	FirstName  string `json:"firstName" binding:"required,max=100"`
	LastName   string `json:"lastName" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required,max=30"`
	Address    string `json:"address" binding:"required,max=300"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postalCode" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
}

type StepRequest struct {
	Step *int `json:"step" binding:"required"`
}

type OrderConfirmationRequest struct {
	OrderNumber string          `json:"orderNumber" binding:"required"`
	PlacedAt    time.Time       `json:"placedAt" binding:"required"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	ItemCount   int             `json:"itemCount" binding:"min=0"`
	SubTotal    decimal.Decimal `json:"subTotal"`
	Discount    decimal.Decimal `json:"discount"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
}

func (r *ProductRequest) ToDomain(cur currency.Unit) domain.Product {
	return domain.Product{
		ID:       r.ID,
		Name:     r.Name,
		CoverURL: r.CoverURL,
		Price:    domain.NewMoney(r.Price, cur),
	}
}

func (r *ShippingMethodRequest) ToDomain(cur currency.Unit) domain.ShippingMethod {
	return domain.ShippingMethod{
		ID:                r.ID,
		Name:              r.Name,
		Price:             domain.NewMoney(r.Price, cur),
		EstimatedDelivery: r.EstimatedDelivery,
	}
}

func (r *DiscountRequest) ToDomain(cur currency.Unit) domain.Money {
	return domain.NewMoney(r.Amount, cur)
}

func (r *BillingRequest) ToDomain() (domain.Billing, error) {
	var billing domain.Billing
	if err := copier.Copy(&billing, r); err != nil {
		return domain.Billing{}, fmt.Errorf("copier.Copy: %w", err)
	}
	return billing, nil
}

func (r *StepRequest) ToDomain() domain.Step {
	return domain.Step(*r.Step)
}

func (r *OrderConfirmationRequest) ToDomain(cur currency.Unit) domain.OrderSnapshot {
	return domain.OrderSnapshot{
		OrderNumber: r.OrderNumber,
		PlacedAt:    r.PlacedAt,
		UpdatedAt:   r.UpdatedAt,
		ItemCount:   r.ItemCount,
		SubTotal:    domain.NewMoney(r.SubTotal, cur),
		Discount:    domain.NewMoney(r.Discount, cur),
		Shipping:    domain.NewMoney(r.Shipping, cur),
		Total:       domain.NewMoney(r.Total, cur),
	}
}
