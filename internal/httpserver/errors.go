package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	msgValidationFailed   = "Validation failed"
	msgInvalidBody        = "Invalid request body"
	msgProductUnavailable = "One or more products in your cart are no longer available"
	msgPlaceOrderFailed   = "Failed to place order"
)

// ErrorHandler renders every error as {"error": "...", "details": {...}}.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := transport.ErrorResponse{Error: http.StatusText(code)}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case transport.ErrorResponse:
				body = m
			case string:
				body = transport.ErrorResponse{Error: m}
			case error:
				body = transport.ErrorResponse{Error: m.Error()}
			default:
				body = transport.ErrorResponse{Error: fmt.Sprint(m)}
			}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			e.Logger.Error(werr)
		}
	}
}

func validationFailed(verr *service.ValidationError) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{
		Error:   msgValidationFailed,
		Details: verr.Fields,
	})
}

// badRequest maps service validation errors to 400 with field details.
func badRequest(err error) *echo.HTTPError {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return validationFailed(verr)
	}
	return echo.NewHTTPError(http.StatusBadRequest, msgValidationFailed)
}
