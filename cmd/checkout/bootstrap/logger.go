package bootstrap

import (
	"log/slog"

	"github.com/nikolayk812/checkout-session/internal/config"
	"github.com/nikolayk812/checkout-session/internal/logger"
	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
)

func NewLogger(cfg config.Config) *slog.Logger {
	l := logger.New(cfg.Log)
	slog.SetDefault(l)
	return l
}
