package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/checkout-session/internal/checkout"
	"github.com/nikolayk812/checkout-session/internal/config"
	"github.com/nikolayk812/checkout-session/internal/handler/api"
	"github.com/nikolayk812/checkout-session/internal/handler/middleware"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, provider *checkout.Provider, checkoutHandler *api.CheckoutHandler) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, cfg, provider, checkoutHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS, logger))
	engine.Use(middleware.LoggingMiddleware(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, provider *checkout.Provider, h *api.CheckoutHandler) {
	engine.GET("/health", healthCheck)

	checkoutGroup := engine.Group("/api/checkout")
	checkoutGroup.Use(middleware.CheckoutSession(provider, cfg.Session))
	addRoutes(checkoutGroup, []route{
		{Method: http.MethodGet, Path: "/session", Handler: h.GetSession},
		{Method: http.MethodDelete, Path: "/session", Handler: h.Reset},

		{Method: http.MethodPost, Path: "/items", Handler: h.AddItem},
		{Method: http.MethodDelete, Path: "/items/:id", Handler: h.RemoveItem},
		{Method: http.MethodPost, Path: "/items/:id/increase", Handler: h.IncreaseQuantity},
		{Method: http.MethodPost, Path: "/items/:id/decrease", Handler: h.DecreaseQuantity},
		{Method: http.MethodPost, Path: "/buy-now", Handler: h.BuyNow},

		{Method: http.MethodPut, Path: "/shipping", Handler: h.ApplyShipping},
		{Method: http.MethodPut, Path: "/discount", Handler: h.ApplyDiscount},
		{Method: http.MethodPut, Path: "/billing", Handler: h.SetBilling},

		{Method: http.MethodPut, Path: "/step", Handler: h.GoToStep},
		{Method: http.MethodPost, Path: "/step/next", Handler: h.NextStep},
		{Method: http.MethodPost, Path: "/step/back", Handler: h.BackStep},

		{Method: http.MethodPost, Path: "/orders", Handler: h.PlaceOrder},
		{Method: http.MethodPost, Path: "/orders/confirmation", Handler: h.RecordOrderSuccess},
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		g.Handle(r.Method, r.Path, r.Handler)
	}
}
