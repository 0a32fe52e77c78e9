package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/denylist"
	"github.com/Skotchmaster/pharmacy_shop/internal/httpserver"
	authmw "github.com/Skotchmaster/pharmacy_shop/internal/middleware/auth"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/mykafka"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
	"github.com/Skotchmaster/pharmacy_shop/pkg/cache"
	pkgdb "github.com/Skotchmaster/pharmacy_shop/pkg/db"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/pharmacy_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

func main() {
	config.LoadEnvFiles(".env")
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	db, err := pkgdb.Open(startCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var events service.Publisher
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = mykafka.NewProducer(cfg.KafkaBrokers)
		events = prod
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	var deny service.Denylist
	var closeRedis func() error
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(startCtx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		deny = denylist.NewRedisDenylist(rdb)
		closeRedis = rdb.Close
		logger.Info("token_denylist_enabled")
	}

	store := &repo.GormRepo{DB: db}
	v := validate.New()

	authSvc := &service.AuthService{
		Repo:            store,
		Tokens:          tokens.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		Validator:       v,
		Denylist:        deny,
		Events:          events,
		AllowRoleSignup: cfg.AllowRoleSignup,
	}
	catalogSvc := &service.CatalogService{Repo: store, Validator: v, Events: events}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.BodyLimit("1M"))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		Auth:           authmw.New(authSvc),
		Ready: func(ctx context.Context) error {
			return pkgdb.Ping(ctx, db)
		},
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		log.Println("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	closeAll(logger, db, prod, closeRedis)
	logger.Info("shutdown_complete")
}

func closeAll(logger *slog.Logger, db *gorm.DB, prod *mykafka.Producer, closeRedis func() error) {
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if closeRedis != nil {
		if err := closeRedis(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}
}
