package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParams(c echo.Context) (int, int) {
	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	size := pagination.ParseIntDefault(c.QueryParam("size"), pagination.DefaultPageSize)
	return page, size
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id := c.Param("id")
	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product not found", "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, size := pageParams(c)
	f := repo.ProductFilter{CategorySlug: c.QueryParam("category")}
	if raw := c.QueryParam("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			l.Warn("get_products_error", "status", 400, "reason", "featured is not a bool", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "featured must be true or false")
		}
		f.Featured = &featured
	}

	list, err := h.Svc.ListProducts(ctx, f, page, size)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	page, size := pageParams(c)
	list, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_products_error", "status", 400, "reason", "empty query", "error", err)
			return badRequest(err)
		}
		l.Error("search_products_error", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		l.Error("get_categories_error", "status", 500, "reason", "cannot list categories", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories")
	}
	return c.JSON(http.StatusOK, map[string]any{"data": cats})
}

func (h *CatalogHTTP) GetCategoryProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get_products")

	slug := c.Param("slug")
	page, size := pageParams(c)
	list, err := h.Svc.ListProductsByCategory(ctx, slug, page, size)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_category_products_error", "status", 404, "reason", "category not found", "slug", slug)
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		l.Error("get_category_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_error", "status", 400, "reason", "validation failed", "error", err)
			return badRequest(err)
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create product")
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_product")

	id := c.Param("id")
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	prod, err := h.Svc.PatchProduct(ctx, req, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("product_patch_error", "status", 404, "reason", "product not found", "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_patch_error", "status", 400, "reason", "validation failed", "error", err)
			return badRequest(err)
		default:
			l.Error("product_patch_error", "status", 500, "reason", "cannot update product", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
		}
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id := c.Param("id")
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("product_delete_error", "status", 404, "reason", "product not found", "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("product_delete_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	var req transport.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("category_create_error", "status", 400, "reason", "validation failed", "error", err)
			return badRequest(err)
		case errors.Is(err, service.ErrConflict):
			l.Warn("category_create_error", "status", 409, "reason", "slug taken", "error", err)
			return echo.NewHTTPError(http.StatusConflict, "Category slug already exists")
		default:
			l.Error("category_create_error", "status", 500, "reason", "cannot create category", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot create category")
		}
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_category")

	id := c.Param("id")
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("category_delete_error", "status", 404, "reason", "category not found", "category_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		l.Error("category_delete_error", "status", 500, "reason", "cannot delete category", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete category")
	}

	l.Info("delete_category_success", "category_id", id)
	return c.NoContent(http.StatusNoContent)
}
