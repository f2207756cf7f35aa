package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AdminHTTP struct {
	Auth    *service.AdminAuth
	Metrics *service.DashboardService
}

func (h *AdminHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidBody)
	}

	token, exp, err := h.Auth.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("login_error", "status", 400, "reason", "validation failed", "error", err)
			return badRequest(err)
		case errors.Is(err, service.ErrInvalidCredentials):
			l.Warn("login_error", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		default:
			l.Error("login_error", "status", 500, "reason", "cannot issue token", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot log in")
		}
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, token, "/", exp))
	l.Info("login_success")
	return c.JSON(http.StatusOK, transport.LoginResponse{AccessToken: token, ExpiresAt: exp.Unix()})
}

func (h *AdminHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	d, err := h.Metrics.Get(ctx)
	if err != nil {
		l.Error("dashboard_error", "status", 500, "reason", "cannot load metrics", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load dashboard")
	}
	return c.JSON(http.StatusOK, d)
}
