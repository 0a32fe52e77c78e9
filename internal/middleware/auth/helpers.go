package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

const claimsKey = "claims"

// Verifier is satisfied by service.AuthService.
type Verifier interface {
	Verify(ctx context.Context, token string) (*tokens.Claims, error)
}

type Middleware struct {
	Verifier Verifier
}

func New(v Verifier) *Middleware {
	return &Middleware{Verifier: v}
}

func ClaimsFromContext(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*tokens.Claims)
	return claims, ok && claims != nil
}

func setUserContext(c echo.Context) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return
	}
	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)

	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("user_id", claims.UserID)
	c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
}

// toHTTPError turns a verifier or extractor failure into the response error.
func toHTTPError(err error) *echo.HTTPError {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return echo.NewHTTPError(apperr.HTTPStatus(appErr), apperr.Message(appErr)).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.").SetInternal(err)
}
