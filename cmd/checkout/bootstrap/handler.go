package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/checkout-session/internal/handler"
	"github.com/nikolayk812/checkout-session/internal/handler/api"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCheckoutHandler,
		func() *gin.Engine {
			return gin.New()
		},
	),
	fx.Invoke(handler.NewRouter),
)
