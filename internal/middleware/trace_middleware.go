package middleware

import (
	"time"

	"fairFin/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Trace tags every request with a trace id, taken from X-Request-ID when the
// caller sent one, and logs the finished request.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			traceID := req.Header.Get(echo.HeaderXRequestID)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := logger.WithTraceID(req.Context(), traceID)
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, traceID)
			c.Set("trace_id", traceID)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.FromContext(ctx).Info("request",
				"method", req.Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
