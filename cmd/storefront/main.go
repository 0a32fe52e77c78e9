package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/apiclient"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/cart"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/checkout"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/session"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/storage"
	"github.com/Skotchmaster/pharmacy_shop/pkg/cache"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

const usage = `usage: storefront <command> [flags]

commands:
  register    create an account
  login       log in and remember the session
  logout      forget the session
  products    list products (-search, -category, -price)
  categories  list product categories
  add         add a product to the cart (-id, -qty)
  update      change a cart quantity (-id, -qty); 0 removes
  remove      remove a product from the cart (-id)
  cart        show the cart with totals
  clear       empty the cart
  checkout    place the order
`

type app struct {
	api      *apiclient.Client
	store    storage.Storage
	cart     *cart.Cart
	sessions *session.Manager
	flow     *checkout.Flow
	out      io.Writer
}

func newApp(ctx context.Context, cfg config.StorefrontConfig, store storage.Storage, out io.Writer) *app {
	l := logging.FromContext(ctx)

	c, err := cart.Load(ctx, store)
	if err != nil {
		l.Warn("cart_load_failed", "error", err)
		c = cart.New(store)
	}
	sessions := session.NewManager(store)

	return &app{
		api:      apiclient.NewClient(cfg.APIURL),
		store:    store,
		cart:     c,
		sessions: sessions,
		flow:     checkout.NewFlow(c, sessions, cfg.CheckoutDelay),
		out:      out,
	}
}

func openStorage(ctx context.Context, cfg config.StorefrontConfig) (storage.Storage, func() error, error) {
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStorage(client, ""), client.Close, nil
	}
	fs, err := storage.NewFileStorage(cfg.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() error { return nil }, nil
}

func main() {
	config.LoadEnvFiles(".env")
	cfg := config.LoadStorefront()

	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel).With("service", "storefront")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "storage:", err)
		os.Exit(1)
	}
	defer closeStore()

	a := newApp(ctx, cfg, store, os.Stdout)
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		stop()
		os.Exit(1)
	}
}

// describe renders err for a person at a terminal.
func describe(err error) string {
	var verr *checkout.ValidationError
	var aerr *apperr.Error
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &aerr):
		return apperr.Message(err)
	default:
		return err.Error()
	}
}
