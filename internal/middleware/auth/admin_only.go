package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
)

// RequireRole must run after RequireAuth.
func (m *Middleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
			}
			if err := service.RequireRole(claims, role); err != nil {
				return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err))
			}
			return next(c)
		}
	}
}
