package checkout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/checkout-session/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const recordVersion = 1

// sessionRecord is the persisted JSON shape of a session. Totals are written
// for readers of the raw record but recomputed on decode.
type sessionRecord struct {
	Version        int                   `json:"version"`
	Currency       string                `json:"currency"`
	ActiveStep     int                   `json:"activeStep"`
	Items          []lineRecord          `json:"items"`
	SubTotal       decimal.Decimal       `json:"subTotal"`
	Total          decimal.Decimal       `json:"total"`
	Discount       decimal.Decimal       `json:"discount"`
	Shipping       decimal.Decimal       `json:"shipping"`
	Billing        *billingRecord        `json:"billing,omitempty"`
	ShippingMethod *shippingMethodRecord `json:"shippingMethod,omitempty"`
	LastOrder      *orderRecord          `json:"lastOrder,omitempty"`
	PlacementID    string                `json:"placementId,omitempty"`
}

type lineRecord struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	CoverURL string          `json:"coverUrl"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type billingRecord struct {
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

type shippingMethodRecord struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
}

type orderRecord struct {
	OrderNumber string          `json:"orderNumber"`
	PlacedAt    time.Time       `json:"placedAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	ItemCount   int             `json:"itemCount"`
	SubTotal    decimal.Decimal `json:"subTotal"`
	Discount    decimal.Decimal `json:"discount"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
}

func encodeSession(s domain.Session) ([]byte, error) {
	record := sessionRecord{
		Version:     recordVersion,
		Currency:    s.Currency().String(),
		ActiveStep:  int(s.ActiveStep()),
		Items:       make([]lineRecord, 0, len(s.Items())),
		SubTotal:    s.SubTotal().Amount,
		Total:       s.Total().Amount,
		Discount:    s.Discount().Amount,
		Shipping:    s.Shipping().Amount,
		PlacementID: s.PlacementID(),
	}

	for _, item := range s.Items() {
		record.Items = append(record.Items, lineRecord{
			ID:       item.ID,
			Name:     item.Name,
			CoverURL: item.CoverURL,
			Price:    item.Price.Amount,
			Quantity: item.Quantity,
		})
	}

	if b := s.Billing(); b != nil {
		record.Billing = &billingRecord{
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
		record.ShippingMethod = &shippingMethodRecord{
			ID:                m.ID,
			Name:              m.Name,
			Price:             m.Price.Amount,
			EstimatedDelivery: m.EstimatedDelivery,
		}
	}

	if o := s.LastOrder(); o != nil {
		record.LastOrder = &orderRecord{
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

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return payload, nil
}

func decodeSession(payload []byte) (domain.Session, error) {
	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Session{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	if record.Version != recordVersion {
		return domain.Session{}, fmt.Errorf("record version[%d] is not supported", record.Version)
	}

	cur, err := currency.ParseISO(record.Currency)
	if err != nil {
		return domain.Session{}, fmt.Errorf("currency[%s] is not valid: %w", record.Currency, err)
	}

	money := func(amount decimal.Decimal) domain.Money {
		return domain.NewMoney(amount, cur)
	}

	params := domain.SessionParams{
		Currency:    cur,
		ActiveStep:  domain.Step(record.ActiveStep),
		Discount:    record.Discount,
		Shipping:    record.Shipping,
		PlacementID: record.PlacementID,
	}

	for _, item := range record.Items {
		params.Items = append(params.Items, domain.CartLine{
			ID:       item.ID,
			Name:     item.Name,
			CoverURL: item.CoverURL,
			Price:    money(item.Price),
			Quantity: item.Quantity,
		})
	}

	if b := record.Billing; b != nil {
		params.Billing = &domain.Billing{
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

	if m := record.ShippingMethod; m != nil {
		params.ShippingMethod = &domain.ShippingMethod{
			ID:                m.ID,
			Name:              m.Name,
			Price:             money(m.Price),
			EstimatedDelivery: m.EstimatedDelivery,
		}
	}

	if o := record.LastOrder; o != nil {
		params.LastOrder = &domain.OrderSnapshot{
			OrderNumber: o.OrderNumber,
			PlacedAt:    o.PlacedAt,
			UpdatedAt:   o.UpdatedAt,
			ItemCount:   o.ItemCount,
			SubTotal:    money(o.SubTotal),
			Discount:    money(o.Discount),
			Shipping:    money(o.Shipping),
			Total:       money(o.Total),
		}
	}

	session, err := domain.RestoreSession(params)
	if err != nil {
		return domain.Session{}, fmt.Errorf("domain.RestoreSession: %w", err)
	}

	return session, nil
}
