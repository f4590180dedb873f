package middleware

import (
	"context"
	"time"

	"manpower/backend/foundation/web"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = 1

// RequestID returns the id stored by the RequestLogger middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestLogger tags every request with an id, taken from the X-Request-ID
// header when the caller sent one, and logs the outcome.
func RequestLogger(log *zap.Logger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(c *web.Context) error {
			id := c.GetHeader(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.New().String()
			}

			c.Ctx = context.WithValue(c.Ctx, requestIDKey, id)
			c.Header(RequestIDHeader, id)

			started := time.Now()
			err := handler(c)

			fields := []zap.Field{
				zap.String("request_id", id),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.String("query", c.Request.URL.RawQuery),
				zap.Int("status", c.Writer.Status()),
				zap.Duration("took", time.Since(started)),
			}

			switch status := c.Writer.Status(); {
			case status >= 500:
				log.Error("request", fields...)
			case status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}

			return err
		}

		return h
	}

	return m
}
