package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// CartHTTP keeps the cart in the client's cookie; nothing is stored server side.
type CartHTTP struct {
	Catalog *service.CatalogService
}

func saveCart(c echo.Context, ct *cart.Cart) error {
	ck, err := cart.Cookie(ct)
	if err != nil {
		return err
	}
	c.SetCookie(ck)
	return c.JSON(http.StatusOK, ct.View())
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ct := cart.FromRequest(c.Request())
	return c.JSON(http.StatusOK, ct.View())
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	details := map[string]string{}
	if req.ProductID == "" {
		details["product_id"] = "is required"
	}
	if req.Quantity < 0 {
		details["quantity"] = "must be greater than 0"
	}
	if len(details) > 0 {
		l.Warn("add_to_cart_error", "status", 400, "reason", "validation failed")
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Error: msgValidationFailed, Details: details})
	}

	p, err := h.Catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("add_to_cart_error", "status", 404, "reason", "product not found", "product_id", req.ProductID)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot load product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add to cart")
	}

	ct := cart.FromRequest(c.Request())
	ct.Add(cart.Line{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: req.Quantity})
	if err := saveCart(c, ct); err != nil {
		l.Error("add_to_cart_error", "status", 500, "reason", "cannot encode cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add to cart")
	}
	return nil
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	var req transport.SetCartQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("cart_quantity_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	id := c.Param("id")
	ct := cart.FromRequest(c.Request())
	if !ct.SetQuantity(id, req.Quantity) {
		l.Warn("cart_quantity_error", "status", 404, "reason", "item not in cart", "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "Item not in cart")
	}
	if err := saveCart(c, ct); err != nil {
		l.Error("cart_quantity_error", "status", 500, "reason", "cannot encode cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
	}
	return nil
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	id := c.Param("id")
	ct := cart.FromRequest(c.Request())
	if !ct.Remove(id) {
		l.Warn("cart_remove_error", "status", 404, "reason", "item not in cart", "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "Item not in cart")
	}
	if err := saveCart(c, ct); err != nil {
		l.Error("cart_remove_error", "status", 500, "reason", "cannot encode cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
	}
	return nil
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	c.SetCookie(cart.ClearCookie())
	return c.NoContent(http.StatusNoContent)
}
