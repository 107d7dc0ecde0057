package bootstrap

import (
	"github.com/nikolayk812/checkout-session/internal/config"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
)
