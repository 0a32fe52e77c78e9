package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/pharmacy_shop/internal/middleware/auth"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		Message: "User registered successfully!",
		User:    *user,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, transport.LoginResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	claims, _ := authmw.ClaimsFromContext(c)
	if err := h.Svc.Logout(ctx, claims); err != nil {
		return httpError(err)
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logged out"})
}

func claimsResponse(claims *tokens.Claims) transport.ClaimsResponse {
	out := transport.ClaimsResponse{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out.Expires = claims.ExpiresAt.Unix()
	}
	return out
}

func (h *AuthHTTP) Protected(c echo.Context) error {
	claims, ok := authmw.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Access denied. No token provided.")
	}
	return c.JSON(http.StatusOK, transport.ProtectedResponse{
		Message: "Protected data",
		User:    claimsResponse(claims),
	})
}

func (h *AuthHTTP) Admin(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Admin dashboard"})
}

// Users lists public profiles. Admin only.
func (h *AuthHTTP) Users(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}
