package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	E    *echo.Echo
	Repo *repo.GormRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	r := &repo.GormRepo{DB: db}
	catalog := service.NewCatalogService(r, nil, nil, time.Minute)
	orders := &service.OrderService{Repo: r}

	pw, err := hash.HashPassword("admin-pass")
	require.NoError(t, err)

	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logging.Discard()))

	Register(e, &Deps{
		CatalogHandler:  &CatalogHTTP{Svc: catalog},
		CartHandler:     &CartHTTP{Catalog: catalog},
		CheckoutHandler: &CheckoutHTTP{Svc: &service.CheckoutService{Products: r, Orders: r}, Orders: orders},
		OrderHandler:    &OrderHTTP{Svc: orders},
		AdminHandler: &AdminHTTP{
			Auth:    &service.AdminAuth{Email: "admin@shop.test", PasswordHash: pw, JWTSecret: testSecret},
			Metrics: &service.DashboardService{Repo: r, LowStockThreshold: 5},
		},
		JWTSecret: testSecret,
		Ready:     func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	})

	return &testEnv{E: e, Repo: r}
}

func (env *testEnv) seed(t *testing.T, id, name, price string) {
	t.Helper()
	require.NoError(t, env.Repo.DB.Create(&models.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: 10}).Error)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := tokens.Issue(testSecret, "subject-"+role, role, time.Hour)
	require.NoError(t, err)
	return tok
}

type reqOpt func(*http.Request)

func bearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func withCookies(cks ...*http.Cookie) reqOpt {
	return func(r *http.Request) {
		for _, ck := range cks {
			r.AddCookie(ck)
		}
	}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func assertMoney(t *testing.T, want string, got any) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "money should be a JSON string, got %T", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "want %s, got %s", want, s)
}

func checkoutBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"fullName":      "Jane Doe",
		"email":         "jane@example.com",
		"phone":         "0600000000",
		"address":       "12 Rue des Fleurs",
		"city":          "Casablanca",
		"paymentMethod": "CASH_ON_DELIVERY",
		"cartItems":     items,
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", nil).Code)
}

func TestCheckout_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(
		map[string]any{"id": "p1", "quantity": 2, "price": 1},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	orderID, _ := body["orderId"].(string)
	require.NotEmpty(t, orderID)

	order, err := env.Repo.GetOrder(t.Context(), orderID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(order.TotalAmount))
	require.Len(t, order.Items, 1)
	assert.True(t, decimal.NewFromInt(100).Equal(order.Items[0].PriceAtOrder))
	assert.Nil(t, order.UserID)

	ck := cookieNamed(rec, cart.CookieName)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
}

func TestCheckout_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(
		map[string]any{"id": "p1", "quantity": 1},
		map[string]any{"id": "ghost", "quantity": 1},
	))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "One or more products in your cart are no longer available", decode(t, rec)["error"])

	var n int64
	require.NoError(t, env.Repo.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckout_ValidationDetails(t *testing.T) {
	env := newTestEnv(t)

	body := checkoutBody()
	body["email"] = "nope"
	body["paymentMethod"] = "BARTER"

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, "Validation failed", resp["error"])
	details, ok := resp["details"].(map[string]any)
	require.True(t, ok, rec.Body.String())
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "paymentMethod")
	assert.Contains(t, details, "cartItems")
}

func TestCheckout_BadQuantity(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(map[string]any{"id": "p1", "quantity": 0}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode(t, rec)["details"].(map[string]any)
	assert.Contains(t, details, "cartItems[0].quantity")
}

func TestCheckout_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/checkout", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["error"])
}

func TestCheckout_AttachesUser(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")

	rec := env.do(t, http.MethodPost, "/api/v1/checkout",
		checkoutBody(map[string]any{"id": "p1", "quantity": 1}),
		bearer(token(t, tokens.RoleCustomer)))
	require.Equal(t, http.StatusOK, rec.Code)

	order, err := env.Repo.GetOrder(t.Context(), decode(t, rec)["orderId"].(string))
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, "subject-customer", *order.UserID)
}

func TestCheckout_Confirmation(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(map[string]any{"id": "p1", "quantity": 3}))
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["orderId"].(string)

	rec = env.do(t, http.MethodGet, "/api/v1/orders/"+id+"/confirmation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conf := decode(t, rec)
	assert.Equal(t, id, conf["order_id"])
	assert.Equal(t, "PENDING", conf["status"])
	assertMoney(t, "300", conf["total_amount"])
	assert.Len(t, conf["items"], 1)

	rec = env.do(t, http.MethodGet, "/api/v1/orders/missing/confirmation", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")

	rec := env.do(t, http.MethodGet, "/api/v1/products/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Argan Oil", decode(t, rec)["name"])

	rec = env.do(t, http.MethodGet, "/api/v1/products/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode(t, rec)["error"])
}

func TestSearch_EmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/products/search?q=", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"name": "x", "price": "1"}

	rec := env.do(t, http.MethodPost, "/api/v1/admin/products", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", body, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products", body, bearer(token(t, tokens.RoleCustomer)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin access required", decode(t, rec)["error"])
}

func TestAdmin_ProductCRUDRevalidatesListing(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")
	admin := bearer(token(t, tokens.RoleAdmin))

	rec := env.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products",
		map[string]any{"name": "Saffron", "price": "30.00", "stock": 2}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	newID := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 2)

	rec = env.do(t, http.MethodPatch, "/api/v1/admin/products/"+newID, map[string]any{"price": "35"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assertMoney(t, "35", decode(t, rec)["price"])

	rec = env.do(t, http.MethodPatch, "/api/v1/admin/products/"+newID, map[string]any{"price": "-1"}, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["details"], "price")

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/products/"+newID, nil, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products/"+newID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/products", nil)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/products/"+newID, nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_CreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/admin/products",
		map[string]any{"price": "10"}, bearer(token(t, tokens.RoleAdmin)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["details"], "name")
}

func TestAdmin_Categories(t *testing.T) {
	env := newTestEnv(t)
	admin := bearer(token(t, tokens.RoleAdmin))

	rec := env.do(t, http.MethodPost, "/api/v1/admin/categories", map[string]any{"name": "Tea", "slug": "tea"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	catID := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/categories", map[string]any{"name": "Tea", "slug": "tea"}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/products",
		map[string]any{"name": "Mint", "price": "3", "category_id": catID}, admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/categories/tea/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = env.do(t, http.MethodGet, "/api/v1/categories/unknown/products", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/admin/categories/"+catID, nil, admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["data"])
}

func TestAdmin_LoginAndDashboard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/admin/login", map[string]any{"email": "admin@shop.test", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/login", map[string]any{"email": "admin@shop.test", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	ck := cookieNamed(rec, tokens.AccessCookie)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/dashboard", nil, withCookies(ck))
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode(t, rec)
	assert.EqualValues(t, 0, d["order_count"])
}

func TestAdmin_OrderStatus(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")
	admin := bearer(token(t, tokens.RoleAdmin))

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", checkoutBody(map[string]any{"id": "p1", "quantity": 1}))
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec)["orderId"].(string)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/orders?status=PENDING", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)

	rec = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+id+"/status", map[string]any{"status": "SHIPPED"}, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/admin/orders/"+id+"/status", map[string]any{"status": "PROCESSING"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PROCESSING", decode(t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/api/v1/admin/orders/"+id, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)
}

func TestCart_CookieFlowIntoCheckout(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "p1", "Argan Oil", "100")
	env.seed(t, "p2", "Mint Tea", "12.50")

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "p1", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ck := cookieNamed(rec, cart.CookieName)
	require.NotNil(t, ck)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "p2"}, withCookies(ck))
	require.Equal(t, http.StatusOK, rec.Code)
	ck = cookieNamed(rec, cart.CookieName)
	assert.EqualValues(t, 3, decode(t, rec)["count"])

	rec = env.do(t, http.MethodPatch, "/api/v1/cart/items/p2", map[string]any{"quantity": 4}, withCookies(ck))
	require.Equal(t, http.StatusOK, rec.Code)
	ck = cookieNamed(rec, cart.CookieName)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "ghost"}, withCookies(ck))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/cart/items/missing", nil, withCookies(ck))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, err := cart.Decode(ck.Value)
	require.NoError(t, err)
	body := checkoutBody()
	body["cartItems"] = c.CheckoutItems()

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	order, err := env.Repo.GetOrder(t.Context(), decode(t, rec)["orderId"].(string))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(250).Equal(order.TotalAmount), order.TotalAmount.String())
}
