package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type TokenMiddleware struct {
	JWTSecret []byte
}

func NewTokenMiddleware(secret []byte) *TokenMiddleware {
	return &TokenMiddleware{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *TokenMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, nil)
}

func (m *TokenMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// Optional attaches the caller's identity when a valid token is present and
// lets anonymous or badly-authenticated requests through untouched.
func (m *TokenMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := tokenFromRequest(c); raw != "" {
			if claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret); err == nil {
				setUserContext(c, claims)
			}
		}
		return next(c)
	}
}

func (m *TokenMiddleware) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func tokenFromRequest(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(raw)
		}
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(ContextUserID, claims.Subject)
	c.Set(ContextRole, claims.Role)
}

// UserID returns the subject set by one of the middlewares, or "".
func UserID(c echo.Context) string {
	s, _ := c.Get(ContextUserID).(string)
	return s
}
