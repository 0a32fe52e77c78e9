package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

// CreateUser inserts u. The unique indexes on username and email are the
// source of truth; the lookups only pick the message.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ? OR email = ?", u.Username, u.Email).First(&existing).Error
		switch {
		case err == nil:
			if existing.Username == u.Username {
				return apperr.New(apperr.ErrConflict, "Username already exists")
			}
			return apperr.New(apperr.ErrConflict, "Email already in use")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperr.Wrap(apperr.ErrInternal, "lookup user", err)
		}

		if err := tx.Create(u).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.ErrConflict, "Username or email already exists")
			}
			return apperr.Wrap(apperr.ErrInternal, "create user", err)
		}
		return nil
	})
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.ErrInternal, "get user", err)
	}
	return &u, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "list users", err)
	}
	return users, nil
}
