package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikolayk812/checkout-session/internal/port"
)

// Provider opens checkout managers against a shared store.
type Provider struct {
	store  port.SessionStore
	logger *slog.Logger
	cfg    Config
}

func NewProvider(store port.SessionStore, logger *slog.Logger, cfg Config) (*Provider, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &Provider{
		store:  store,
		logger: logger,
		cfg:    cfg,
	}, nil
}

func (p *Provider) Open(ctx context.Context, ownerID string) (*Manager, error) {
	m, err := Open(ctx, p.store, p.logger, p.cfg, ownerID)
	if err != nil {
		return nil, fmt.Errorf("checkout.Open: %w", err)
	}
	return m, nil
}

// Scope opens the owner's manager and returns a context carrying it.
func (p *Provider) Scope(ctx context.Context, ownerID string) (context.Context, *Manager, error) {
	m, err := p.Open(ctx, ownerID)
	if err != nil {
		return ctx, nil, err
	}
	return NewContext(ctx, m), m, nil
}
