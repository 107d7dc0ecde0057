package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/nikolayk812/checkout-session/internal/checkout"
	"github.com/nikolayk812/checkout-session/internal/config"
	"github.com/nikolayk812/checkout-session/internal/orderclient"
	"github.com/nikolayk812/checkout-session/internal/port"
	"go.uber.org/fx"
	"golang.org/x/text/currency"
)

var CheckoutModule = fx.Module("checkout",
	fx.Provide(
		NewCheckoutProvider,
		func(cfg config.Config, logger *slog.Logger) port.OrderPlacer {
			return orderclient.New(cfg.Order, logger)
		},
	),
)

func NewCheckoutProvider(store port.SessionStore, logger *slog.Logger, cfg config.Config) (*checkout.Provider, error) {
	cur, err := currency.ParseISO(cfg.Session.Currency)
	if err != nil {
		return nil, fmt.Errorf("currency[%s] is not valid: %w", cfg.Session.Currency, err)
	}

	return checkout.NewProvider(store, logger, checkout.Config{
		Key:      cfg.Session.StorageKey,
		Currency: cur,
	})
}
