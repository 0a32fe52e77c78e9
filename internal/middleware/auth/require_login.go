package auth

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

// RequireAuth accepts only requests carrying "Authorization: Bearer <token>"
// that the verifier accepts.
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return m.Verifier.Verify(c.Request().Context(), auth)
		},
		SuccessHandler: setUserContext,
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := toHTTPError(err)
			logging.FromContext(c.Request().Context()).Warn("auth_rejected", "status", httpErr.Code, "reason", httpErr.Message)
			return httpErr
		},
	})
}
