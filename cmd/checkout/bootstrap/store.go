package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-session/internal/config"
	"github.com/nikolayk812/checkout-session/internal/port"
	"github.com/nikolayk812/checkout-session/internal/repository"
	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewSessionStore,
	),
)

func NewSessionStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (port.SessionStore, error) {
	if cfg.Session.Store != config.StorePostgres {
		logger.Warn("using in-memory session store, sessions are lost on restart")
		return repository.NewMemorySession(), nil
	}

	pool, err := pgxpool.New(context.Background(), cfg.DB.BuildDSN())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("pool.Ping: %w", err)
			}
			logger.Info("connected to session database", "host", cfg.DB.Host, "db", cfg.DB.DBName)
			return nil
		},
		OnStop: func(_ context.Context) error {
			pool.Close()
			return nil
		},
	})

	return repository.NewSession(pool), nil
}
