package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type CheckoutHTTP struct {
	Svc    *service.CheckoutService
	Orders *service.OrderService
}

func (h *CheckoutHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.place_order")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	order, err := h.Svc.PlaceOrder(ctx, req, middleware.UserID(c))
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			l.Warn("create_order_error", "status", 400, "reason", "validation failed", "error", err)
			return validationFailed(verr)
		case errors.Is(err, service.ErrProductUnavailable):
			l.Warn("create_order_error", "status", 400, "reason", "product unavailable", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, msgProductUnavailable)
		default:
			l.Error("create_order_error", "status", 500, "reason", "cannot persist order", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, msgPlaceOrderFailed)
		}
	}

	c.SetCookie(cart.ClearCookie())
	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2))
	return c.JSON(http.StatusOK, transport.CheckoutResponse{Success: true, OrderID: order.ID})
}

func (h *CheckoutHTTP) Confirmation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.confirmation")

	id := c.Param("id")
	order, err := h.Orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_confirmation_error", "status", 404, "reason", "order not found", "order_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		l.Error("get_confirmation_error", "status", 500, "reason", "cannot load order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load order")
	}

	return c.JSON(http.StatusOK, transport.NewConfirmation(order))
}
