package port

import (
	"context"

	"github.com/nikolayk812/checkout-session/internal/domain"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderSnapshot, error)
}
