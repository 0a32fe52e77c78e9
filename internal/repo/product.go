package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

var errProductNotFound = apperr.New(apperr.ErrNotFound, "Product not found")

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "list products", err)
	}
	return products, nil
}

func (r *GormRepo) ProductByID(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProductNotFound
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "get product", err)
	}
	return &p, nil
}

// CreateProduct relies on the primary key to reject a taken id.
func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.ErrConflict, "Product ID already exists")
		}
		return apperr.Wrap(apperr.ErrInternal, "create product", err)
	}
	return nil
}

// UpdateProduct loads the product, applies patch and saves it in one transaction.
func (r *GormRepo) UpdateProduct(ctx context.Context, id int, patch func(*models.Product) error) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return err
		}
		if err := patch(&p); err != nil {
			return err
		}
		p.ID = id
		return tx.Save(&p).Error
	})
	if err != nil {
		var appErr *apperr.Error
		switch {
		case errors.As(err, &appErr):
			return nil, err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, errProductNotFound
		default:
			return nil, apperr.Wrap(apperr.ErrInternal, "update product", err)
		}
	}
	return &p, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id int) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Wrap(apperr.ErrInternal, "delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return errProductNotFound
	}
	return nil
}

// ReplaceProducts swaps the whole catalog for products atomically.
func (r *GormRepo) ReplaceProducts(ctx context.Context, products []models.Product) (int, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.CreateInBatches(products, 100).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperr.New(apperr.ErrConflict, "Duplicate product id in import")
		}
		return 0, apperr.Wrap(apperr.ErrInternal, "replace products", err)
	}
	return len(products), nil
}
