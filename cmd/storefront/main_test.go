package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/httpserver"
	authmw "github.com/Skotchmaster/pharmacy_shop/internal/middleware/auth"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/cart"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/storage"
	"github.com/Skotchmaster/pharmacy_shop/internal/testutil"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

func startAPI(t *testing.T) string {
	t.Helper()

	db := testutil.OpenInMemoryDB(t)
	testutil.SeedProducts(t, db,
		testutil.Product(1, "Aspirin", 5.99),
		testutil.Product(2, "Advil", 62),
	)
	r := &repo.GormRepo{DB: db}
	v := validate.New()
	authSvc := &service.AuthService{
		Repo:      r,
		Tokens:    tokens.NewManager([]byte("storefront-test"), time.Hour),
		Validator: v,
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Validator: v}},
		Auth:           authmw.New(authSvc),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL
}

type harness struct {
	cfg   config.StorefrontConfig
	store storage.Storage
	out   bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return &harness{
		cfg: config.StorefrontConfig{
			APIURL:        startAPI(t),
			CheckoutDelay: time.Millisecond,
		},
		store: store,
	}
}

// run starts a fresh process-equivalent app each time so state must come from storage.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	h.out.Reset()
	ctx := context.Background()
	a := newApp(ctx, h.cfg, h.store, &h.out)
	err := a.run(ctx, args)
	return h.out.String(), err
}

var checkoutArgs = []string{
	"checkout", "-first", "Alice", "-last", "Smith", "-address", "1 Main St",
	"-city", "Springfield", "-zip", "12345", "-card", "4111 1111 1111 1111",
	"-expiry", "09/27", "-cvv", "123",
}

func TestStorefront_ShoppingSession(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "register", "-username", "alice", "-email", "a@x.com", "-password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "User registered successfully!")

	out, err = h.run(t, "login", "-username", "alice", "-password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, alice!")

	out, err = h.run(t, "products", "-search", "ASPIRIN", "-price", "under50")
	require.NoError(t, err)
	assert.Contains(t, out, "Aspirin")
	assert.NotContains(t, out, "Advil")

	out, err = h.run(t, "categories")
	require.NoError(t, err)
	assert.Equal(t, "all\nPain Relief\n", out)

	_, err = h.run(t, "add", "-id", "1", "-qty", "2")
	require.NoError(t, err)
	out, err = h.run(t, "add", "-id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "(3 items)")

	out, err = h.run(t, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Subtotal: 17.97")
	assert.Contains(t, out, "Shipping: 5.99")

	out, err = h.run(t, checkoutArgs...)
	require.NoError(t, err)
	assert.Contains(t, out, "Order ORD-")
	assert.Contains(t, out, "Ship to: 1 Main St, Springfield, 12345")
	assert.Contains(t, out, "3 x Aspirin")

	c, err := cart.Load(context.Background(), h.store)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	out, err = h.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
}

func TestStorefront_CheckoutNeedsLogin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "add", "-id", "2")
	require.NoError(t, err)

	_, err = h.run(t, checkoutArgs...)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	c, err := cart.Load(context.Background(), h.store)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count())
}

func TestStorefront_CartEditing(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "add", "-id", "1", "-qty", "0")
	require.NoError(t, err)
	_, err = h.run(t, "add", "-id", "2")
	require.NoError(t, err)

	out, err := h.run(t, "update", "-id", "1", "-qty", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Items:    5")

	_, err = h.run(t, "update", "-id", "2", "-qty", "0")
	require.NoError(t, err)
	out, err = h.run(t, "remove", "-id", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")
}

func TestStorefront_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t)
	require.ErrorIs(t, err, errUsage)

	_, err = h.run(t, "frobnicate")
	require.ErrorIs(t, err, errUsage)

	_, err = h.run(t, "add", "-id", "99")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Product not found", describe(err))

	_, err = h.run(t, "products", "-price", "cheap")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = h.run(t, "remove")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStorefront_CorruptCartStartsEmpty(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(context.Background(), cart.StorageKey, []byte("not json")))

	out, err := h.run(t, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")
}
