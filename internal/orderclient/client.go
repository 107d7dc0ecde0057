package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolayk812/checkout-session/internal/config"
	"github.com/nikolayk812/checkout-session/internal/domain"
	"github.com/nikolayk812/checkout-session/internal/port"
	"github.com/shopspring/decimal"
)

const (
	ordersPath = "/api/orders"

	// order service deduplicates placements carrying the same key
	idempotencyKeyHeader = "Idempotency-Key"
)

type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(cfg config.OrderConfig, logger *slog.Logger) port.OrderPlacer {
	return &client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type orderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type billing struct {
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

type orderPayload struct {
	PlacementID      string          `json:"placementId"`
	Items            []orderLine     `json:"items"`
	Billing          billing         `json:"billing"`
	ShippingMethodID string          `json:"shippingMethodId"`
	Currency         string          `json:"currency"`
	SubTotal         decimal.Decimal `json:"subTotal"`
	Discount         decimal.Decimal `json:"discount"`
	Shipping         decimal.Decimal `json:"shipping"`
	Total            decimal.Decimal `json:"total"`
}

type orderConfirmation struct {
	OrderNumber string           `json:"orderNumber"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	SubTotal    *decimal.Decimal `json:"subTotal"`
	Discount    *decimal.Decimal `json:"discount"`
	Shipping    *decimal.Decimal `json:"shipping"`
	Total       *decimal.Decimal `json:"total"`
}

func (c *client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderSnapshot, error) {
	body, err := json.Marshal(toPayload(req))
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("json.Marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.PlacementID != "" {
		httpReq.Header.Set(idempotencyKeyHeader, req.PlacementID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("order service rejected order",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(msg)))
		return domain.OrderSnapshot{}, fmt.Errorf("order service responded with status %d", resp.StatusCode)
	}

	var confirmation orderConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("json.Decode: %w", err)
	}
	if confirmation.OrderNumber == "" {
		return domain.OrderSnapshot{}, fmt.Errorf("order number is empty")
	}

	return toSnapshot(confirmation, req), nil
}

func toPayload(req domain.OrderRequest) orderPayload {
	payload := orderPayload{
		PlacementID: req.PlacementID,
		Items:       make([]orderLine, 0, len(req.Items)),
		Billing: billing{
			FirstName:  req.Billing.FirstName,
			LastName:   req.Billing.LastName,
			Email:      req.Billing.Email,
			Phone:      req.Billing.Phone,
			Address:    req.Billing.Address,
			City:       req.Billing.City,
			State:      req.Billing.State,
			PostalCode: req.Billing.PostalCode,
			Country:    req.Billing.Country,
		},
		ShippingMethodID: req.ShippingMethod.ID,
		Currency:         req.Total.Currency.String(),
		SubTotal:         req.SubTotal.Amount,
		Discount:         req.Discount.Amount,
		Shipping:         req.Shipping.Amount,
		Total:            req.Total.Amount,
	}

	for _, item := range req.Items {
		payload.Items = append(payload.Items, orderLine{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price.Amount,
			Quantity:  item.Quantity,
		})
	}

	return payload
}

// toSnapshot takes the totals confirmed by the order service and falls back
// to the requested ones for totals the confirmation leaves out.
func toSnapshot(c orderConfirmation, req domain.OrderRequest) domain.OrderSnapshot {
	itemCount := 0
	for _, item := range req.Items {
		itemCount += item.Quantity
	}

	return domain.OrderSnapshot{
		OrderNumber: c.OrderNumber,
		PlacedAt:    c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		ItemCount:   itemCount,
		SubTotal:    confirmed(c.SubTotal, req.SubTotal),
		Discount:    confirmed(c.Discount, req.Discount),
		Shipping:    confirmed(c.Shipping, req.Shipping),
		Total:       confirmed(c.Total, req.Total),
	}
}

func confirmed(amount *decimal.Decimal, requested domain.Money) domain.Money {
	if amount == nil {
		return requested
	}
	return domain.NewMoney(*amount, requested.Currency)
}
