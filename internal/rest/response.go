package rest

import (
	"context"
	"errors"
	"net/http"

	"fairFin/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// serviceError maps a failure that stopped the service before any stage ran.
func serviceError(ctx context.Context, c echo.Context, op string, err error) error {
	logger.FromContext(ctx).Error("review request failed", "operation", op, "error", err)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, ResponseError{Message: "request timed out"})
	case errors.Is(err, context.Canceled):
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "request canceled"})
	default:
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "model artifacts unavailable"})
	}
}
