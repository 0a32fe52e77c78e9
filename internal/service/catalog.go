package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id int, patch func(*models.Product) error) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ReplaceProducts(ctx context.Context, products []models.Product) (int, error)
}

type CatalogService struct {
	Repo      ProductStore
	Validator *validate.Validator
	Events    Publisher
}

func productValidationError(fields map[string]string) error {
	for _, f := range []string{"id", "brand", "generic", "type", "manufacturer", "price", "image", "description", "rating"} {
		tag, ok := fields[f]
		if !ok {
			continue
		}
		switch {
		case f == "rating":
			return apperr.New(apperr.ErrValidation, "Rating must be between 0 and 5")
		case f == "price" && tag == "gte":
			return apperr.New(apperr.ErrValidation, "Price must be non-negative")
		case f == "id":
			return apperr.New(apperr.ErrValidation, "Product ID must be a positive integer")
		default:
			return apperr.Newf(apperr.ErrValidation, "Field %s is required", f)
		}
	}
	return apperr.New(apperr.ErrValidation, "Invalid product")
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.Repo.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_products_failed", "error", err)
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id int) (*models.Product, error) {
	return s.Repo.ProductByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create", "product_id", req.ID)

	fields, err := s.Validator.Struct(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "validate", err)
	}
	if len(fields) > 0 {
		l.Warn("create_product_error", "status", 400, "fields", fields)
		return nil, productValidationError(fields)
	}

	p := req.Product()
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			l.Warn("create_product_error", "status", 400, "reason", "duplicate id")
		} else {
			l.Error("create_product_error", "status", 500, "error", err)
		}
		return nil, err
	}

	l.Info("product_created")
	publish(ctx, s.Events, TopicProductEvents, strconv.Itoa(p.ID), map[string]any{
		"type":      "product_created",
		"productId": p.ID,
		"brand":     p.Brand,
		"price":     p.Price,
	})
	return &p, nil
}

func (s *CatalogService) Update(ctx context.Context, id int, req transport.PatchProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", id)

	fields, err := s.Validator.Struct(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "validate", err)
	}
	if len(fields) > 0 {
		l.Warn("update_product_error", "status", 400, "fields", fields)
		return nil, productValidationError(fields)
	}

	p, err := s.Repo.UpdateProduct(ctx, id, func(p *models.Product) error {
		req.Apply(p)
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			l.Warn("update_product_error", "status", 404)
		} else {
			l.Error("update_product_error", "status", 500, "error", err)
		}
		return nil, err
	}

	l.Info("product_updated")
	publish(ctx, s.Events, TopicProductEvents, strconv.Itoa(p.ID), map[string]any{
		"type":      "product_updated",
		"productId": p.ID,
		"price":     p.Price,
	})
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			l.Warn("delete_product_error", "status", 404)
		} else {
			l.Error("delete_product_error", "status", 500, "error", err)
		}
		return err
	}

	l.Info("product_deleted")
	publish(ctx, s.Events, TopicProductEvents, strconv.Itoa(id), map[string]any{
		"type":      "product_deleted",
		"productId": id,
	})
	return nil
}

// Import validates every product and replaces the catalog with them.
func (s *CatalogService) Import(ctx context.Context, reqs []transport.CreateProductRequest) (int, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.import")

	products := make([]models.Product, 0, len(reqs))
	for i, req := range reqs {
		fields, err := s.Validator.Struct(req)
		if err != nil {
			return 0, apperr.Wrap(apperr.ErrInternal, "validate", err)
		}
		if len(fields) > 0 {
			err := productValidationError(fields)
			l.Warn("import_rejected", "index", i, "product_id", req.ID, "reason", apperr.Message(err))
			return 0, apperr.Newf(apperr.ErrValidation, "product #%d (id %d): %s", i, req.ID, apperr.Message(err))
		}
		products = append(products, req.Product())
	}

	n, err := s.Repo.ReplaceProducts(ctx, products)
	if err != nil {
		l.Error("import_failed", "error", err)
		return 0, err
	}

	l.Info("products_imported", "count", n)
	publish(ctx, s.Events, TopicProductEvents, "import", map[string]any{
		"type":  "products_imported",
		"count": n,
	})
	return n, nil
}
