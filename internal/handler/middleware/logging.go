package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-session/internal/errs"
)

const requestIDKey = "request_id"

func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		logAttrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("client_ip", c.ClientIP()),
		}

		c.Next()

		statusCode := c.Writer.Status()

		attrs := make([]slog.Attr, len(logAttrs), len(logAttrs)+4)
		copy(attrs, logAttrs)
		attrs = append(attrs,
			slog.Int("status_code", statusCode),
			slog.Duration("duration", time.Since(startTime)),
		)

		if ownerID := GetOwnerID(c); ownerID != "" {
			attrs = append(attrs, slog.String("owner_id", ownerID))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
			if statusCode >= 500 {
				attrs = append(attrs, slog.Any("stack", errs.ExtractStackLines(c.Errors.Last().Err, 10)))
			}
		}

		logLevel := slog.LevelInfo
		if statusCode >= 500 {
			logLevel = slog.LevelError
		} else if statusCode >= 400 {
			logLevel = slog.LevelWarn
		}

		logger.LogAttrs(context.Background(), logLevel, "Request completed", attrs...)
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
