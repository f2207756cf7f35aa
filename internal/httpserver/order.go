package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	page, size := pageParams(c)
	offset, limit := pagination.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("list_orders_error", "status", 400, "reason", "bad status filter", "error", err)
			return badRequest(err)
		}
		l.Error("list_orders_error", "status", 500, "reason", "cannot list orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	return c.JSON(http.StatusOK, transport.OrderList{
		Data: orders,
		Meta: pagination.NewMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_order")

	id := c.Param("id")
	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_order_error", "status", 404, "reason", "order not found", "order_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		l.Error("get_order_error", "status", 500, "reason", "cannot load order", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	id := c.Param("id")
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_order_status_error", "status", 400, "reason", "unknown status", "error", err)
			return badRequest(err)
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_order_status_error", "status", 404, "reason", "order not found", "order_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrConflict):
			l.Warn("update_order_status_error", "status", 409, "reason", "transition not allowed", "error", err)
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			l.Error("update_order_status_error", "status", 500, "reason", "cannot update order", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
		}
	}

	l.Info("update_order_status_success", "order_id", id, "to", order.Status)
	return c.JSON(http.StatusOK, order)
}
