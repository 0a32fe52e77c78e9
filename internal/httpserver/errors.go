package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

// httpError converts a service error into the echo error carrying its public message.
func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), apperr.Message(err)).SetInternal(err)
}

// ErrorHandler renders every error as {"message": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error"

	var he *echo.HTTPError
	var appErr *apperr.Error
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	case errors.As(err, &appErr):
		code = apperr.HTTPStatus(err)
		msg = apperr.Message(err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, transport.MessageResponse{Message: msg})
}
