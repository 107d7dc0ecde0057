package domain

import "time"

type Billing struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	Country    string
}

type ShippingMethod struct {
	ID                string
	Name              string
	Price             Money
	EstimatedDelivery string
}

// OrderSnapshot is the confirmation returned by the order placement service.
type OrderSnapshot struct {
	OrderNumber string
	PlacedAt    time.Time
	UpdatedAt   time.Time
	ItemCount   int
	SubTotal    Money
	Discount    Money
	Shipping    Money
	Total       Money
}

// OrderRequest is the payload assembled from a session for order placement.
// PlacementID identifies the placement attempt so that a retry is not placed
// twice.
type OrderRequest struct {
	Items          []CartLine
	Billing        Billing
	ShippingMethod ShippingMethod
	SubTotal       Money
	Discount       Money
	Shipping       Money
	Total          Money
	PlacementID    string
}
