package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/pharmacy_shop/internal/middleware/auth"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	Auth           *authmw.Middleware
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	requireAuth := d.Auth.RequireAuth()
	requireAdmin := d.Auth.RequireRole(models.RoleAdmin)

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout, requireAuth)
	e.GET("/protected", d.AuthHandler.Protected, requireAuth)
	e.GET("/admin", d.AuthHandler.Admin, requireAuth, requireAdmin)
	e.GET("/users", d.AuthHandler.Users, requireAuth, requireAdmin)

	products := e.Group("/api/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, requireAuth, requireAdmin)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, requireAuth, requireAdmin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, requireAuth, requireAdmin)
}
