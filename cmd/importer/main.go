package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/mykafka"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
	pkgconfig "github.com/Skotchmaster/pharmacy_shop/pkg/config"
	pkgdb "github.com/Skotchmaster/pharmacy_shop/pkg/db"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

func main() {
	file := flag.String("file", "data/products.json", "JSON array of products to import")
	flag.Parse()

	config.LoadEnvFiles(".env")
	cfg := config.Load()
	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", "pharmacy-importer")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	reqs, err := readProducts(*file)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}

	db, err := pkgdb.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}
	defer func() {
		if err := pkgdb.Close(db); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}, Validator: validate.New()}
	if len(cfg.KafkaBrokers) > 0 {
		prod := mykafka.NewProducer(cfg.KafkaBrokers)
		defer prod.Close()
		svc.Events = prod
	}

	n, err := svc.Import(ctx, reqs)
	if err != nil {
		logger.Error("import_failed", "file", *file, "error", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully imported %d products\n", n)
}

func readProducts(path string) ([]transport.CreateProductRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reqs []transport.CreateProductRequest
	if err := json.NewDecoder(f).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return reqs, nil
}
