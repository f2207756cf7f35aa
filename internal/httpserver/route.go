package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	AdminHandler    *AdminHTTP
	JWTSecret       []byte
	Ready           func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler(e)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewTokenMiddleware(d.JWTSecret)
	api := e.Group("/api/v1")

	products := api.Group("/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	api.GET("/categories", d.CatalogHandler.GetCategories)
	api.GET("/categories/:slug/products", d.CatalogHandler.GetCategoryProducts)

	cart := api.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.SetQuantity)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	api.POST("/checkout", d.CheckoutHandler.PlaceOrder, authMW.Optional)
	api.GET("/orders/:id/confirmation", d.CheckoutHandler.Confirmation)

	api.POST("/admin/login", d.AdminHandler.Login)
	api.POST("/admin/logout", d.AdminHandler.Logout)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)

	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)

	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.GET("/orders/:id", d.OrderHandler.GetOrder)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
