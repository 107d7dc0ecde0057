package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-session/internal/checkout"
	"github.com/nikolayk812/checkout-session/internal/config"
	"github.com/nikolayk812/checkout-session/internal/handler/httperr"
)

const ownerIDKey = "owner_id"

// CheckoutSession identifies the visitor by cookie, minting a new id when the
// cookie is absent or malformed, and puts the visitor's checkout manager into
// the request context.
func CheckoutSession(provider *checkout.Provider, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(ownerID) != nil {
			ownerID = uuid.NewString()
		}

		// refresh expiry on every request
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, ownerID, int(cfg.CookieMaxAge.Seconds()), "/", "", cfg.CookieSecure, true)

		ctx, m, err := provider.Scope(c.Request.Context(), ownerID)
		if err != nil {
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Checkout session unavailable", nil)
			return
		}

		c.Set(ownerIDKey, m.OwnerID())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func GetOwnerID(c *gin.Context) string {
	return c.GetString(ownerIDKey)
}
