package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/checkout-session/internal/checkout"
	"github.com/nikolayk812/checkout-session/internal/domain"
	"github.com/nikolayk812/checkout-session/internal/errs"
	reqdto "github.com/nikolayk812/checkout-session/internal/handler/dto/request"
	resdto "github.com/nikolayk812/checkout-session/internal/handler/dto/response"
	"github.com/nikolayk812/checkout-session/internal/handler/httperr"
	"github.com/nikolayk812/checkout-session/internal/port"
)

type CheckoutHandler struct {
	placer port.OrderPlacer
}

func NewCheckoutHandler(placer port.OrderPlacer) *CheckoutHandler {
	return &CheckoutHandler{placer: placer}
}

type transition func(c *gin.Context, m *checkout.Manager) (domain.Session, error)

func (h *CheckoutHandler) GetSession(c *gin.Context) {
	m, ok := manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resdto.FromSession(m.Session()))
}

func (h *CheckoutHandler) Reset(c *gin.Context) {
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.Reset(c.Request.Context())
	})
}

func (h *CheckoutHandler) AddItem(c *gin.Context) {
	var req reqdto.ProductRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.AddItem(c.Request.Context(), req.ToDomain(m.Session().Currency()))
	})
}

func (h *CheckoutHandler) BuyNow(c *gin.Context) {
	var req reqdto.ProductRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.BuyNow(c.Request.Context(), req.ToDomain(m.Session().Currency()))
	})
}

func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.RemoveItem(c.Request.Context(), c.Param("id"))
	})
}

func (h *CheckoutHandler) IncreaseQuantity(c *gin.Context) {
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.IncreaseQuantity(c.Request.Context(), c.Param("id"))
	})
}

func (h *CheckoutHandler) DecreaseQuantity(c *gin.Context) {
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.DecreaseQuantity(c.Request.Context(), c.Param("id"))
	})
}

func (h *CheckoutHandler) ApplyShipping(c *gin.Context) {
	var req reqdto.ShippingMethodRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.ApplyShipping(c.Request.Context(), req.ToDomain(m.Session().Currency()))
	})
}

func (h *CheckoutHandler) ApplyDiscount(c *gin.Context) {
	var req reqdto.DiscountRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.ApplyDiscount(c.Request.Context(), req.ToDomain(m.Session().Currency()))
	})
}

func (h *CheckoutHandler) SetBilling(c *gin.Context) {
	var req reqdto.BillingRequest
	if !bind(c, &req) {
		return
	}
	billing, err := req.ToDomain()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.SetBilling(c.Request.Context(), billing)
	})
}

func (h *CheckoutHandler) GoToStep(c *gin.Context) {
	var req reqdto.StepRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.GoToStep(c.Request.Context(), req.ToDomain())
	})
}

func (h *CheckoutHandler) NextStep(c *gin.Context) {
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.NextStep(c.Request.Context())
	})
}

func (h *CheckoutHandler) BackStep(c *gin.Context) {
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.BackStep(c.Request.Context())
	})
}

func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.PlaceOrder(c.Request.Context(), h.placer)
	})
}

func (h *CheckoutHandler) RecordOrderSuccess(c *gin.Context) {
	var req reqdto.OrderConfirmationRequest
	if !bind(c, &req) {
		return
	}
	h.run(c, func(c *gin.Context, m *checkout.Manager) (domain.Session, error) {
		return m.RecordOrderSuccess(c.Request.Context(), req.ToDomain(m.Session().Currency()))
	})
}

func (h *CheckoutHandler) run(c *gin.Context, fn transition) {
	m, ok := manager(c)
	if !ok {
		return
	}

	session, err := fn(c, m)
	if err != nil {
		status, msg := statusFor(err)
		httperr.AbortWithError(c, status, err, msg, nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSession(session))
}

func manager(c *gin.Context) (*checkout.Manager, bool) {
	m, err := checkout.FromContext(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return nil, false
	}
	return m, true
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return false
	}
	return true
}

var validationErrors = []error{
	domain.ErrEmptyProductID,
	domain.ErrNegativePrice,
	domain.ErrNegativeDiscount,
	domain.ErrNegativeShipping,
	domain.ErrCurrencyMismatch,
	domain.ErrStepOutOfRange,
	domain.ErrInvalidQuantity,
	domain.ErrDuplicateLine,
}

func statusFor(err error) (int, string) {
	for _, target := range validationErrors {
		if errs.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	switch {
	case errs.Is(err, domain.ErrCheckoutIncomplete):
		return http.StatusConflict, "Checkout is incomplete"
	case errs.Is(err, checkout.ErrConcurrentUpdate):
		return http.StatusConflict, "Checkout session was updated concurrently"
	case errs.Is(err, checkout.ErrOrderPlacement):
		return http.StatusBadGateway, "Order placement failed"
	case errs.Is(err, checkout.ErrStoreFailure):
		return http.StatusServiceUnavailable, "Checkout session unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
